package domain

// AuthorizeQuery is the consent endpoint input
type AuthorizeQuery struct {
	UUID     string `query:"uuid"`
	Redirect string `query:"redirect" validate:"omitempty,oneof=true false"`
}

// AuthorizeResponse carries the consent url when redirect=false
type AuthorizeResponse struct {
	URL string `json:"url"`
}

// CallbackQuery is what the provider sends back after consent
type CallbackQuery struct {
	Code  string `query:"code"`
	State string `query:"state"`
}

// Message is a plain acknowledgement body
type Message struct {
	Message string `json:"message"`
}
