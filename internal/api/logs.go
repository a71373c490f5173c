package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/izikbr/calorific2-app/internal/service"
)

type foodItemRequest struct {
	Name       string    `json:"name"`
	Calories   int       `json:"calories"`
	ProteinG   float64   `json:"protein_g"`
	CarbsG     float64   `json:"carbs_g"`
	FatG       float64   `json:"fat_g"`
	ConsumedAt time.Time `json:"consumed_at"`
	SourceType string    `json:"source_type"`
}

type appendFoodsRequest struct {
	Date  string            `json:"date"`
	Items []foodItemRequest `json:"items"`
}

type updateFoodRequest struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

type weightRequest struct {
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit"`
}

func (s *Server) listFoods(c *gin.Context) {
	id := c.Param("id")
	if _, err := service.ProfileByID(s.DB, id); err != nil {
		_ = c.Error(err)
		return
	}
	foods, err := service.ListFoodForDate(s.DB, id, c.Query("date"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, foods)
}

func (s *Server) appendFoods(c *gin.Context) {
	var req appendFoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	items := make([]service.FoodItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.FoodItemInput(it))
	}
	ids, err := service.AppendFoodItems(s.DB, c.Param("id"), req.Date, items)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"ids": ids})
}

func (s *Server) updateFood(c *gin.Context) {
	var req updateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	profileID, itemID := c.Param("id"), c.Param("itemID")
	err := service.UpdateFoodItem(s.DB, profileID, service.UpdateFoodItemInput{
		ID:       itemID,
		Name:     req.Name,
		Calories: req.Calories,
		ProteinG: req.ProteinG,
		CarbsG:   req.CarbsG,
		FatG:     req.FatG,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	item, err := service.FoodItemByID(s.DB, profileID, itemID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, item)
}

func (s *Server) deleteFood(c *gin.Context) {
	if err := service.RemoveFoodItem(s.DB, c.Param("id"), c.Param("itemID")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listWeights(c *gin.Context) {
	id := c.Param("id")
	if _, err := service.ProfileByID(s.DB, id); err != nil {
		_ = c.Error(err)
		return
	}
	weights, err := service.ListWeights(s.DB, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, weights)
}

func (s *Server) putWeight(c *gin.Context) {
	var req weightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	entry, err := service.UpsertWeight(s.DB, c.Param("id"), service.WeightInput{
		Date:   c.Param("date"),
		Weight: req.Weight,
		Unit:   req.Unit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, http.StatusOK, entry)
}

func (s *Server) deleteWeight(c *gin.Context) {
	if err := service.DeleteWeight(s.DB, c.Param("id"), c.Param("date")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
