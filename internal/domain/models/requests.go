package models

// Requests for analytics HTTP endpoints. Defined in domain for consistency and reuse.

type ChangePointsRequest struct {
	NumChangePoints  int    `query:"k" json:"k" default:"1" validate:"gte=1,lte=5"`
	Model            string `query:"model" json:"model" default:"mean" validate:"oneof=mean mean_variance"`
	MinSegmentLength int    `query:"min_segment" json:"min_segment" default:"2" validate:"gte=2,lte=1000"`
	Draws            int    `query:"draws" json:"draws,omitempty" validate:"omitempty,gte=100,lte=100000"`
	Seed             int64  `query:"seed" json:"seed,omitempty" validate:"omitempty,gte=0"`
}

type AnalysisRequest struct {
	NumChangePoints  int    `query:"k" json:"k" default:"1" validate:"gte=1,lte=5"`
	Model            string `query:"model" json:"model" default:"mean" validate:"oneof=mean mean_variance"`
	MinSegmentLength int    `query:"min_segment" json:"min_segment" default:"2" validate:"gte=2,lte=1000"`
	Draws            int    `query:"draws" json:"draws,omitempty" validate:"omitempty,gte=100,lte=100000"`
	Seed             int64  `query:"seed" json:"seed,omitempty" validate:"omitempty,gte=0"`
	LagWindowDays    int    `query:"lag_window" json:"lag_window" default:"30" validate:"gte=1,lte=365"`
	PriceWindowDays  int    `query:"price_window" json:"price_window" default:"7" validate:"gte=1,lte=90"`
}
