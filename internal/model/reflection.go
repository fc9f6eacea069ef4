package model

import "time"

type Reflection struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	WeekStartDate   string    `json:"weekStartDate"`
	WentWell        *string   `json:"wentWell"`
	ToImprove       *string   `json:"toImprove"`
	Accomplishments *string   `json:"accomplishments"`
	Challenges      *string   `json:"challenges"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
