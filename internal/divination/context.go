package divination

// Service identifies which mystical service a request belongs to.
type Service string

const (
	ServiceTarot      Service = "tarot"
	ServiceAstrology  Service = "astrology"
	ServiceNumerology Service = "numerology"
	ServiceFortune    Service = "fortune"
	ServiceChat       Service = "chat"
)

type PartnerInfo struct {
	Name         string `json:"name"`
	BirthDate    string `json:"birthDate"`
	BirthTime    string `json:"birthTime"`
	BirthPlace   string `json:"birthPlace"`
	Relationship string `json:"relationship"`
	StartDate    string `json:"startDate"`
}

type BreakupInfo struct {
	PartnerName    string `json:"partnerName"`
	BreakupDate    string `json:"breakupDate"`
	AutoDeleteDate string `json:"autoDeleteDate"`
}

// UserContext carries the request-scoped profile facts the prompts are built
// from. It is assembled fresh per request and never persisted as-is.
type UserContext struct {
	Name        string       `json:"name"`
	BirthDate   string       `json:"birthDate"`
	BirthTime   string       `json:"birthTime"`
	BirthPlace  string       `json:"birthPlace"`
	HasPartner  bool         `json:"hasPartner"`
	IsInBreakup bool         `json:"isInBreakup"`
	PartnerName string       `json:"partnerName"`
	Partner     *PartnerInfo `json:"partnerData,omitempty"`
	Breakup     *BreakupInfo `json:"breakupData,omitempty"`
}
