package controllers

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/sow2grow/farm-mall-api/config"
	finance "github.com/sow2grow/farm-mall-api/finance"
	ledger "github.com/sow2grow/farm-mall-api/ledger"
	models "github.com/sow2grow/farm-mall-api/models"
	store "github.com/sow2grow/farm-mall-api/store"
	utils "github.com/sow2grow/farm-mall-api/utils"
)

// ---------------- CREATE ----------------
func CreateOrchard(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Authenticated user ---
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		// --- Bind form fields ---
		var input struct {
			Title           string   `form:"title" binding:"required"`
			Description     string   `form:"description" binding:"required"`
			Category        string   `form:"category" binding:"required"`
			SeedValue       float64  `form:"seed_value" binding:"required"`
			PocketPrice     float64  `form:"pocket_price"`
			Location        string   `form:"location"`
			Timeline        string   `form:"timeline"`
			WhyNeeded       string   `form:"why_needed" binding:"required"`
			CommunityImpact string   `form:"community_impact" binding:"required"`
			Features        []string `form:"features"`
			VideoURL        string   `form:"video_url"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if input.PocketPrice == 0 {
			input.PocketPrice = 150.0
		}
		if input.SeedValue <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed_value must be greater than 0"})
			return
		}
		if input.PocketPrice <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pocket_price must be greater than 0"})
			return
		}

		category := models.GiftCategory(input.Category)
		if !category.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized category"})
			return
		}

		totalPockets := int(math.Floor(input.SeedValue / input.PocketPrice))
		if totalPockets < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed_value must cover at least one pocket"})
			return
		}

		// --- Handle file uploads ---
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
			return
		}

		var imageURLs []string
		if form != nil {
			files := form.File["images"] // key must be "images"
			for _, fileHeader := range files {
				file, err := fileHeader.Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
					return
				}

				url, err := utils.UploadOrchardImage(file, fileHeader)
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error":   "image upload failed",
						"details": err.Error(),
						"file":    fileHeader.Filename,
					})
					return
				}

				imageURLs = append(imageURLs, url)
			}
		}

		// --- Save orchard ---
		now := time.Now()
		orchard := models.Orchard{
			ID:              primitive.NewObjectID(),
			UserID:          userID,
			Title:           input.Title,
			Description:     input.Description,
			Category:        category,
			SeedValue:       input.SeedValue,
			PocketPrice:     input.PocketPrice,
			TotalPockets:    totalPockets,
			Location:        input.Location,
			Timeline:        input.Timeline,
			WhyNeeded:       input.WhyNeeded,
			CommunityImpact: input.CommunityImpact,
			Features:        input.Features,
			Images:          imageURLs,
			VideoURL:        input.VideoURL,
			Status:          models.OrchardActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection(store.ColOrchards)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := col.InsertOne(ctx, orchard); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create orchard"})
			return
		}

		c.JSON(http.StatusCreated, orchard)
	}
}

// ---------------- LIST ----------------
func ListOrchards(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.MongoClient.Database(cfg.DBName).Collection(store.ColOrchards)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// --- Build filter ---
		filter := bson.M{}
		if category := c.Query("category"); category != "" {
			if !models.GiftCategory(category).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized category"})
				return
			}
			filter["category"] = category
		}
		if status := c.Query("status"); status != "" {
			if !models.OrchardStatus(status).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized status"})
				return
			}
			filter["status"] = status
		}
		if grower := c.Query("grower_id"); grower != "" {
			if oid, err := primitive.ObjectIDFromHex(grower); err == nil {
				filter["user_id"] = oid
			}
		}
		if q := c.Query("q"); q != "" {
			filter["title"] = bson.M{"$regex": q, "$options": "i"}
		}

		// --- Fetch data ---
		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch orchards"})
			return
		}

		var orchards []models.Orchard
		if err := cursor.All(ctx, &orchards); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode orchards"})
			return
		}

		if len(orchards) == 0 {
			c.JSON(http.StatusOK, []models.Orchard{})
			return
		}

		// stored completion_rate can be stale, recompute for display
		for i := range orchards {
			orchards[i].CompletionRate = orchards[i].ComputeCompletionRate()
		}

		// --- Pick the most recently updated orchard ---
		latest := orchards[0]
		for _, o := range orchards {
			if o.UpdatedAt.After(latest.UpdatedAt) {
				latest = o
			}
		}

		// --- Generate ETag from latest orchard ---
		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		// --- Add Last-Modified from latest orchard ---
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, orchards)
	}
}

// ---------------- GET (view) ----------------
func GetOrchard(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		orchardID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orchard id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		orchard, err := cfg.Ledger.View(ctx, orchardID)
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		pockets, err := cfg.Store.Pockets(ctx, orchardID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch pockets"})
			return
		}
		if pockets == nil {
			pockets = []models.Pocket{}
		}

		c.JSON(http.StatusOK, gin.H{
			"orchard": orchard,
			"pockets": pockets,
		})
	}
}

// ---------------- UPDATE ----------------
func UpdateOrchard(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")
		if requesterID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orchardID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orchard id"})
			return
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection(store.ColOrchards)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var existing models.Orchard
		if err := col.FindOne(ctx, bson.M{"_id": orchardID}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "orchard not found"})
			return
		}

		if role != "admin" && existing.UserID.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		// Funding fields (seed_value, pocket_price, counters) are not
		// updatable; only the descriptive surface is.
		var input struct {
			Title           string   `json:"title"`
			Description     string   `json:"description"`
			Category        string   `json:"category"`
			Location        string   `json:"location"`
			Timeline        string   `json:"timeline"`
			WhyNeeded       string   `json:"why_needed"`
			CommunityImpact string   `json:"community_impact"`
			Features        []string `json:"features"`
			Images          []string `json:"images"`
			VideoURL        string   `json:"video_url"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.Title != "" {
			update["title"] = input.Title
		}
		if input.Description != "" {
			update["description"] = input.Description
		}
		if input.Category != "" {
			if !models.GiftCategory(input.Category).Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized category"})
				return
			}
			update["category"] = input.Category
		}
		if input.Location != "" {
			update["location"] = input.Location
		}
		if input.Timeline != "" {
			update["timeline"] = input.Timeline
		}
		if input.WhyNeeded != "" {
			update["why_needed"] = input.WhyNeeded
		}
		if input.CommunityImpact != "" {
			update["community_impact"] = input.CommunityImpact
		}
		if input.Features != nil {
			update["features"] = input.Features
		}
		if input.Images != nil {
			update["images"] = input.Images
		}
		if input.VideoURL != "" {
			update["video_url"] = input.VideoURL
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		if _, err := col.UpdateOne(ctx, bson.M{"_id": orchardID}, bson.M{"$set": update}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update orchard"})
			return
		}

		var updated models.Orchard
		if err := col.FindOne(ctx, bson.M{"_id": orchardID}).Decode(&updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve updated orchard"})
			return
		}
		updated.CompletionRate = updated.ComputeCompletionRate()

		c.JSON(http.StatusOK, gin.H{
			"message": "orchard updated successfully",
			"orchard": updated,
		})
	}
}

// ---------------- DELETE ----------------
func DeleteOrchard(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")
		if requesterID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orchardID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orchard id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		existing, err := cfg.Store.Orchard(ctx, orchardID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "orchard not found"})
			return
		}

		if role != "admin" && existing.UserID.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		// pockets and bestowments cascade with the orchard
		if err := cfg.Store.DeleteOrchard(ctx, orchardID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete orchard"})
			return
		}

		for _, img := range existing.Images {
			utils.DeleteOrchardImage(img)
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "orchard deleted successfully",
			"id":      orchardID.Hex(),
		})
	}
}

// ---------------- BESTOW ----------------
func BestowPockets(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		bestowerID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		orchardID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orchard id"})
			return
		}

		var input struct {
			PocketNumbers []int             `json:"pocket_numbers" binding:"required"`
			Method        string            `json:"payment_method" binding:"required"`
			Notes         string            `json:"notes"`
			Metadata      map[string]string `json:"metadata"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		method := models.PaymentMethod(input.Method)
		if !method.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unrecognized payment method"})
			return
		}

		bestower := ledger.Bestower{
			ID:        bestowerID,
			FirstName: c.GetString("first_name"),
			LastName:  c.GetString("last_name"),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		result, err := cfg.Ledger.Allocate(ctx, orchardID, input.PocketNumbers, bestower)
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		orchard, err := cfg.Store.Orchard(ctx, orchardID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load orchard"})
			return
		}

		split, err := finance.ComputeSplit(result.Allocated, orchard.PocketPrice)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute split"})
			return
		}

		var grower models.User
		gerr := cfg.MongoClient.Database(cfg.DBName).
			Collection(store.ColUsers).
			FindOne(ctx, bson.M{"_id": orchard.UserID}).
			Decode(&grower)

		now := time.Now()
		bestowment := models.Bestowment{
			ID:            primitive.NewObjectID(),
			BestowerID:    bestowerID,
			BestowerName:  utils.FullName(bestower.FirstName, bestower.LastName),
			BestowerEmail: c.GetString("email"),
			GrowerID:      orchard.UserID,
			GrowerName:    utils.FullName(grower.FirstName, grower.LastName),
			GrowerEmail:   grower.Email,
			OrchardID:     orchardID,
			OrchardTitle:  orchard.Title,
			PocketNumbers: result.PocketNumbers,
			PocketCount:   result.Allocated,
			PocketPrice:   orchard.PocketPrice,
			TotalAmount:   split.Gross,
			ProcessingFee: split.ProcessingFee,
			TithingAmount: split.TithingAmount,
			NetToGrower:   split.NetToGrower,
			Method:        method,
			Status:        models.BestowmentCompleted,
			Notes:         input.Notes,
			Metadata:      input.Metadata,
			CreatedAt:     now,
			UpdatedAt:     now,
			CompletedAt:   &now,
		}

		col := cfg.MongoClient.Database(cfg.DBName).Collection(store.ColBestowments)
		if _, err := col.InsertOne(ctx, bestowment); err != nil {
			// the pockets are committed; the audit record failing must
			// not be reported as a failed bestowal
			c.JSON(http.StatusCreated, gin.H{
				"pockets_selected": result.Allocated,
				"gross_total":      result.GrossTotal,
				"completion_rate":  result.CompletionRate,
				"warning":          "bestowment record could not be saved",
			})
			return
		}

		utils.NotifyBestowmentMade(bestowment.BestowerEmail, bestowment.BestowerName,
			orchard.Title, result.Allocated, split.Gross)
		if gerr == nil {
			utils.NotifyBestowmentReceived(grower.Email, bestowment.GrowerName,
				bestowment.BestowerName, orchard.Title, result.Allocated, split.NetToGrower)
		}

		c.JSON(http.StatusCreated, gin.H{
			"bestowment_id":    bestowment.ID.Hex(),
			"pockets_selected": result.Allocated,
			"pocket_numbers":   result.PocketNumbers,
			"gross_total":      result.GrossTotal,
			"tithing_amount":   split.TithingAmount,
			"processing_fee":   split.ProcessingFee,
			"net_to_grower":    split.NetToGrower,
			"completion_rate":  result.CompletionRate,
		})
	}
}

// ---------------- COMPLETE ----------------
func CompleteOrchard(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")
		if requesterID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orchardID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orchard id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		existing, err := cfg.Store.Orchard(ctx, orchardID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "orchard not found"})
			return
		}
		if role != "admin" && existing.UserID.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		orchard, err := cfg.Ledger.Complete(ctx, orchardID)
		if err != nil {
			respondLedgerError(c, err)
			return
		}

		var grower models.User
		gerr := cfg.MongoClient.Database(cfg.DBName).
			Collection(store.ColUsers).
			FindOne(ctx, bson.M{"_id": orchard.UserID}).
			Decode(&grower)
		if gerr == nil {
			utils.NotifyOrchardCompleted(grower.Email,
				utils.FullName(grower.FirstName, grower.LastName), orchard.Title)
		}

		c.JSON(http.StatusOK, gin.H{
			"message":          "orchard completed",
			"payout_processed": true,
			"orchard":          orchard,
		})
	}
}
