// controllers/wishlist.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-propmarket/middleware"
	"go-propmarket/models"
)

// WishlistController lets buyers save properties for later.
type WishlistController struct {
	Collection *mongo.Collection
	Properties *mongo.Collection
	Log        logrus.FieldLogger
}

func NewWishlistController(db *mongo.Database, log logrus.FieldLogger) *WishlistController {
	return &WishlistController{
		Collection: db.Collection("wishlists"),
		Properties: db.Collection("properties"),
		Log:        log,
	}
}

// AddToWishlist saves a property to the buyer's wishlist.
// POST /api/wishlist/{propertyId} (buyer)
func (wc *WishlistController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid user identity")
		return
	}
	propertyID, err := primitive.ObjectIDFromHex(mux.Vars(r)["propertyId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid property id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	count, err := wc.Properties.CountDocuments(ctx, bson.M{"_id": propertyID})
	if err != nil {
		wc.Log.WithError(err).Error("check property")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "database unavailable")
		return
	}
	if count == 0 {
		writeError(w, http.StatusNotFound, codeNotFound, "property not found")
		return
	}

	existing, err := wc.Collection.CountDocuments(ctx, bson.M{"user_id": userID, "property_id": propertyID})
	if err != nil {
		wc.Log.WithError(err).Error("check wishlist")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "database unavailable")
		return
	}
	if existing > 0 {
		writeError(w, http.StatusBadRequest, codeConflict, "property already in wishlist")
		return
	}

	item := models.WishlistItem{
		UserID:     userID,
		PropertyID: propertyID,
		AddedAt:    time.Now(),
	}
	res, err := wc.Collection.InsertOne(ctx, item)
	if err != nil {
		wc.Log.WithError(err).Error("insert wishlist item")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "error adding to wishlist")
		return
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = id
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Property added to wishlist",
		"wishlistItem": item,
	})
}

// RemoveFromWishlist deletes a saved property.
// DELETE /api/wishlist/{propertyId} (buyer)
func (wc *WishlistController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid user identity")
		return
	}
	propertyID, err := primitive.ObjectIDFromHex(mux.Vars(r)["propertyId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid property id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var removed models.WishlistItem
	err = wc.Collection.FindOneAndDelete(ctx, bson.M{"user_id": userID, "property_id": propertyID}).Decode(&removed)
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, models.ErrWishlistItemNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Property removed from wishlist",
		"wishlistItem": removed,
	})
}

// GetWishlist lists the buyer's saved properties with listing details.
// GET /api/wishlist (buyer)
func (wc *WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid user identity")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cursor, err := wc.Collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		wc.Log.WithError(err).Error("find wishlist")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "error fetching wishlist")
		return
	}
	defer cursor.Close(ctx)

	items := []models.WishlistItem{}
	if err := cursor.All(ctx, &items); err != nil {
		wc.Log.WithError(err).Error("decode wishlist")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "error fetching wishlist")
		return
	}

	type wishlistEntry struct {
		models.WishlistItem
		Property *models.Property `json:"property,omitempty"`
	}
	entries := make([]wishlistEntry, 0, len(items))
	for _, item := range items {
		entry := wishlistEntry{WishlistItem: item}
		var property models.Property
		if err := wc.Properties.FindOne(ctx, bson.M{"_id": item.PropertyID}).Decode(&property); err == nil {
			entry.Property = &property
		}
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"wishlist": entries})
}
