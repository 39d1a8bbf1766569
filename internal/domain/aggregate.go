package domain

// Aggregate is the derived rating state of a restaurant.
type Aggregate struct {
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"total_reviews"`
}

// ComputeAggregate derives a restaurant's aggregate from its review set: the
// review count and the mean rating rounded to one decimal place. An empty set
// yields the zero aggregate.
func ComputeAggregate(reviews []Review) Aggregate {
	if len(reviews) == 0 {
		return Aggregate{}
	}

	sum := 0.0
	for _, rv := range reviews {
		sum += rv.Rating
	}

	return Aggregate{
		Rating:       Round1(sum / float64(len(reviews))),
		TotalReviews: len(reviews),
	}
}

// RepresentativeImage returns the first image of the earliest review that
// carries at least one, or "" if none do. Callers pass reviews in ascending
// creation order.
func RepresentativeImage(reviews []Review) string {
	for _, rv := range reviews {
		if len(rv.Images) > 0 && rv.Images[0] != "" {
			return rv.Images[0]
		}
	}
	return ""
}
