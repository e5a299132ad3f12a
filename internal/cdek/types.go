package cdek

// Wire types for the carrier API. Field names follow the carrier's
// JSON, not the domain model.

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type registryResponse struct {
	Errors     []apiError      `json:"errors,omitempty"`
	Registries []registryGroup `json:"registries,omitempty"`
}

type registryGroup struct {
	Orders         []registryOrder `json:"orders"`
	RegistryNumber int             `json:"registry_number"`
}

type registryOrder struct {
	CdekNumber string `json:"cdek_number"`
}

type orderResponse struct {
	Entity orderEntity `json:"entity"`
}

type orderEntity struct {
	Number               string          `json:"number,omitempty"`
	Sender               party           `json:"sender"`
	Recipient            party           `json:"recipient"`
	Statuses             []orderStatus   `json:"statuses"`
	DeliveryDetail       *deliveryDetail `json:"delivery_detail,omitempty"`
	TotalSumWithoutAgent float64         `json:"total_sum_without_agent"`
	AgentCommissionSum   float64         `json:"agent_commission_sum"`
}

type party struct {
	Name    string `json:"name"`
	Company string `json:"company"`
}

type orderStatus struct {
	Code     string `json:"code"`
	DateTime string `json:"date_time"`
}

type deliveryDetail struct {
	PaymentInfo []paymentInfo `json:"payment_info,omitempty"`
}

type paymentInfo struct {
	Type string `json:"type"`
}

type intakeRequest struct {
	IntakeDate       string       `json:"intake_date"`
	IntakeTimeFrom   string       `json:"intake_time_from"`
	IntakeTimeTo     string       `json:"intake_time_to"`
	Name             string       `json:"name"`
	Weight           int          `json:"weight"`
	Comment          string       `json:"comment,omitempty"`
	Sender           intakeSender `json:"sender"`
	FromLocation     location     `json:"from_location"`
}

type intakeSender struct {
	Company string        `json:"company"`
	Name    string        `json:"name"`
	Phones  []intakePhone `json:"phones"`
}

type intakePhone struct {
	Number string `json:"number"`
}

type location struct {
	Address string `json:"address"`
}

type intakeResponse struct {
	Entity   *intakeEntity   `json:"entity,omitempty"`
	Requests []intakeOutcome `json:"requests,omitempty"`
}

type intakeEntity struct {
	UUID string `json:"uuid"`
}

type intakeOutcome struct {
	RequestUUID string     `json:"request_uuid"`
	State       string     `json:"state"`
	Errors      []apiError `json:"errors,omitempty"`
}
