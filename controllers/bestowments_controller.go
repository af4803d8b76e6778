package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/sow2grow/farm-mall-api/config"
	models "github.com/sow2grow/farm-mall-api/models"
	store "github.com/sow2grow/farm-mall-api/store"
	utils "github.com/sow2grow/farm-mall-api/utils"
)

// ---------------- LIST ----------------
// ListBestowments returns the caller's bestowments, newest first. Growers
// can pass orchard_id to see bestowments received on one of their orchards.
func ListBestowments(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection(store.ColBestowments)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// --- Build filter ---
		filter := bson.M{"bestower_id": userID}
		if orchardID := c.Query("orchard_id"); orchardID != "" {
			oid, err := primitive.ObjectIDFromHex(orchardID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orchard id"})
				return
			}
			// received view: the grower of the orchard sees all of its
			// bestowments, anyone else only their own
			filter = bson.M{"orchard_id": oid}
			var orchard models.Orchard
			err = cfg.MongoClient.Database(cfg.DBName).
				Collection(store.ColOrchards).
				FindOne(ctx, bson.M{"_id": oid}).
				Decode(&orchard)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "orchard not found"})
				return
			}
			if orchard.UserID != userID && c.GetString("role") != "admin" {
				filter["bestower_id"] = userID
			}
		}
		if status := c.Query("status"); status != "" {
			if !models.BestowmentStatus(status).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized status"})
				return
			}
			filter["status"] = status
		}

		// --- Fetch data ---
		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch bestowments"})
			return
		}

		var bestowments []models.Bestowment
		if err := cursor.All(ctx, &bestowments); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode bestowments"})
			return
		}

		if len(bestowments) == 0 {
			c.JSON(http.StatusOK, []models.Bestowment{})
			return
		}

		// --- Pick the most recently updated bestowment ---
		latest := bestowments[0]
		for _, b := range bestowments {
			if b.UpdatedAt.After(latest.UpdatedAt) {
				latest = b
			}
		}

		// --- Generate ETag from latest bestowment ---
		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		// --- Add Last-Modified from latest bestowment ---
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, bestowments)
	}
}

// ---------------- GET ----------------
func GetBestowment(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bestowment id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var bestowment models.Bestowment
		err = cfg.MongoClient.Database(cfg.DBName).
			Collection(store.ColBestowments).
			FindOne(ctx, bson.M{"_id": oid}).
			Decode(&bestowment)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "bestowment not found"})
			return
		}

		// visible to its bestower, the receiving grower, and admins
		role := c.GetString("role")
		if role != "admin" && bestowment.BestowerID != userID && bestowment.GrowerID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		etag := utils.GenerateETag(bestowment.ID, bestowment.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, bestowment)
	}
}
