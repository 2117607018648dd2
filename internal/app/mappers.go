package app

import "restaurant_booking/internal/domain"

func userStatsView(r domain.UserStats) domain.UserStatsView {
	return domain.UserStatsView{
		User:       r.User.String(),
		Restaurant: r.Restaurant.String(),
		VisitCount: r.VisitCount,
	}
}

func dishStatsView(r domain.DishStats) domain.DishStatsView {
	return domain.DishStatsView{
		User:  r.User.String(),
		Dish:  r.Dish.String(),
		Count: r.Count,
		Name:  r.Name(),
	}
}

func reviewView(r domain.Review) domain.ReviewView {
	return domain.ReviewView{
		User:            r.User.String(),
		Restaurant:      r.Restaurant.String(),
		Rating:          r.Rating,
		ConfidenceLevel: r.ConfidenceLevel,
		Review:          r.Text(),
	}
}
