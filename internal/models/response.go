package models

type SuggestionsResponse struct {
	Slot        string   `json:"slot"`
	Suggestions []string `json:"suggestions"`
}

type BookingResponse struct {
	Leg           int    `json:"leg"`
	From          string `json:"from"`
	To            string `json:"to"`
	Date          string `json:"date"`
	URL           string `json:"url"`
	Source        string `json:"source"`
	ComparisonURL string `json:"comparison_url"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
