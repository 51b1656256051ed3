package handler

import (
	"net/http"

	"catercost/internal/apierror"
	"catercost/internal/dto"
	"catercost/internal/estimation"

	"github.com/gin-gonic/gin"
)

// Estimate godoc
// @Summary      Estimate beverages, ice and finger food for an event
// @Description  Quantities scale with guests, duration, season and event type.
// @Tags         Estimation
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.EstimationRequest  true  "Event"
// @Success      200   {object}  dto.EstimationResponse
// @Failure      422   {object}  apierror.ValidationError
// @Router       /v1/estimation [post]
func Estimate(c *gin.Context) {
	var req dto.EstimationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := estimation.Estimate(estimation.Request{
		GuestCount:    req.GuestCount,
		DurationHours: req.DurationHours,
		Season:        estimation.Season(req.Season),
		EventType:     estimation.EventType(req.EventType),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.EstimationResponse{
		SoftDrinksLiters: res.SoftDrinksLiters,
		WineBottles:      res.WineBottles,
		ChampagneBottles: res.ChampagneBottles,
		BeerLiters:       res.BeerLiters,
		IceKg:            res.IceKg,
		FingerFoodPieces: res.FingerFoodPieces,
	})
}
