package handler

import "github.com/labstack/echo/v4"

func RegisterRoutes(e *echo.Echo, sessions *SessionHandler) {
	api := e.Group("/api/v1")

	api.POST("/sessions", sessions.Create)
	api.GET("/sessions/:id", sessions.Get)
	api.DELETE("/sessions/:id", sessions.Delete)

	api.PUT("/sessions/:id/city-count", sessions.SetCityCount)
	api.PUT("/sessions/:id/slots/:slot", sessions.SetSlotText)
	api.GET("/sessions/:id/slots/:slot/suggestions", sessions.Suggestions)
	api.POST("/sessions/:id/slots/:slot/select", sessions.SelectSuggestion)
	api.PUT("/sessions/:id/stops/:index/days", sessions.SetStopDays)
	api.PUT("/sessions/:id/dates", sessions.SetDates)
	api.PUT("/sessions/:id/passengers", sessions.SetPassengers)

	api.POST("/sessions/:id/submit", sessions.Submit)
	api.POST("/sessions/:id/itineraries/:index/select", sessions.SelectItinerary)
	api.POST("/sessions/:id/back", sessions.Back)
	api.POST("/sessions/:id/new-search", sessions.NewSearch)
	api.GET("/sessions/:id/legs/:leg/booking", sessions.Booking)

	e.GET("/health", HealthHandler)
}
