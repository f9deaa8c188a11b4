package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fuelscout/fuelscout-api/internal/filters"
	"github.com/fuelscout/fuelscout-api/internal/models"
)

// Session endpoints expose the per-session filter state store: criteria
// merge/reset, location replace, favourites, and the sequence-guarded
// "current list" of the most recent search.

func GetFilters(sessions *filters.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := sessions.Get(c.Param("id"))
		c.JSON(http.StatusOK, gin.H{
			"criteria":   store.Criteria(),
			"location":   store.Location(),
			"favourites": store.Favourites(),
		})
	}
}

func PatchFilters(sessions *filters.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch filters.CriteriaPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		store := sessions.Get(c.Param("id"))
		c.JSON(http.StatusOK, store.Merge(patch))
	}
}

func DeleteFilters(sessions *filters.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := sessions.Get(c.Param("id"))
		store.Reset()
		c.JSON(http.StatusOK, store.Criteria())
	}
}

func PutLocation(sessions *filters.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var location models.Location
		if err := c.ShouldBindJSON(&location); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sessions.Get(c.Param("id")).SetLocation(location)
		c.Status(http.StatusNoContent)
	}
}

func PutFavourites(sessions *filters.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			IDs []int64 `json:"ids"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sessions.Get(c.Param("id")).SetFavourites(body.IDs)
		c.Status(http.StatusNoContent)
	}
}

func GetResults(sessions *filters.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := sessions.Get(c.Param("id")).Results()
		if results == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no search has completed for this session"})
			return
		}
		c.JSON(http.StatusOK, results)
	}
}
