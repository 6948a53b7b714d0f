package dto

type MeResponse struct {
	ID    string `json:"id" example:"user_abc123"`
	Email string `json:"email" example:"jane@example.com"`
	Name  string `json:"name" example:"Jane Doe"`
	Plan  string `json:"plan" example:"free"`
}
