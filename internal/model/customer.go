package model

import "time"

// Customer holds a customer's contact details and tailoring measurements.
// Measurement fields are nullable: a missing value means "not taken yet",
// which is distinct from zero.
type Customer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         *string   `json:"phone"`
	QameezLength  *float64  `json:"qameez_length"`
	Chest         *float64  `json:"chest"`
	Waist         *float64  `json:"waist"`
	Neck          *float64  `json:"neck"`
	SleeveLength  *float64  `json:"sleeve_length"`
	ShalwarLength *float64  `json:"shalwar_length"`
	ShalwarWidth  *float64  `json:"shalwar_width"`
	Paicha        *float64  `json:"paicha"`
	CollarSize    *float64  `json:"collar_size"`
	CuffWidth     *float64  `json:"cuff_width"`
	PlacketWidth  *float64  `json:"placket_width"`
	Armhole       *float64  `json:"armhole"`
	Elbow         *float64  `json:"elbow"`
	Bain          *float64  `json:"bain"`
	Daman         *float64  `json:"daman"`
	Gher          *float64  `json:"gher"`
	FrontPocket   *string   `json:"front_pocket"`
	SidePocket    *string   `json:"side_pocket"`
	ShalwarPocket *string   `json:"shalwar_pocket"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CustomerSummary is the short form joined onto orders for list views.
type CustomerSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
}
