// controllers/property.go
package controllers

import (
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-propmarket/middleware"
	"go-propmarket/models"
	"go-propmarket/utils"
)

const maxUploadBytes = 10 << 20 // 10MB multipart memory cap

// PropertyController handles listing CRUD, moderation and image uploads.
type PropertyController struct {
	Collection *mongo.Collection
	Images     utils.ImageStore
	Log        logrus.FieldLogger
}

func NewPropertyController(db *mongo.Database, images utils.ImageStore, log logrus.FieldLogger) *PropertyController {
	return &PropertyController{
		Collection: db.Collection("properties"),
		Images:     images,
		Log:        log,
	}
}

// CreateProperty creates a pending listing with uploaded pictures.
// POST /api/property (seller, multipart form)
func (pc *PropertyController) CreateProperty(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	sellerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid user identity")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "failed to parse multipart form")
		return
	}

	property, err := propertyFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	property.SellerID = sellerID
	property.Status = models.PropertyStatusPending
	property.CreatedAt = time.Now()
	property.UpdatedAt = property.CreatedAt

	files := r.MultipartForm.File["pictures"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "at least one image is required")
		return
	}
	pictures, err := pc.uploadPictures(r.Context(), files)
	if err != nil {
		pc.Log.WithError(err).Error("upload property pictures")
		writeDomainError(w, err)
		return
	}
	property.Pictures = pictures

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	res, err := pc.Collection.InsertOne(ctx, property)
	if err != nil {
		pc.Log.WithError(err).Error("insert property")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "error saving property")
		return
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		property.ID = id
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Property created successfully",
		"property": property,
	})
}

// ApproveProperty flips a pending listing to approved.
// PATCH /api/property/{id}/approve (admin)
func (pc *PropertyController) ApproveProperty(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid property id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": models.PropertyStatusApproved, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var property models.Property
	if err := pc.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&property); err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "property not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Property approved successfully",
		"property": property,
	})
}

// UpdateProperty lets the owning seller edit a listing; new pictures replace
// the old ones.
// PUT /api/property/{id} (seller)
func (pc *PropertyController) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid property id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var existing models.Property
	if err := pc.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "property not found")
		return
	}
	if existing.SellerID.Hex() != claims.UserID {
		writeError(w, http.StatusForbidden, codeForbidden, "unauthorized to update this property")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "failed to parse multipart form")
		return
	}
	updated, err := propertyFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}

	set := bson.M{
		"name":         updated.Name,
		"type":         updated.Type,
		"address":      updated.Address,
		"size":         updated.Size,
		"bedrooms":     updated.Bedrooms,
		"bathrooms":    updated.Bathrooms,
		"price":        updated.Price,
		"contact_info": updated.ContactInfo,
		"updated_at":   time.Now(),
	}

	if files := r.MultipartForm.File["pictures"]; len(files) > 0 {
		for _, picture := range existing.Pictures {
			if picture.PublicID == "" {
				continue
			}
			if err := pc.Images.Delete(r.Context(), picture.PublicID); err != nil {
				pc.Log.WithError(err).WithField("public_id", picture.PublicID).Error("delete old picture")
			}
		}
		pictures, err := pc.uploadPictures(r.Context(), files)
		if err != nil {
			pc.Log.WithError(err).Error("upload property pictures")
			writeDomainError(w, err)
			return
		}
		set["pictures"] = pictures
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var property models.Property
	if err := pc.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&property); err != nil {
		pc.Log.WithError(err).Error("update property")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "error updating property")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Property updated successfully",
		"property": property,
	})
}

// DeleteProperty removes a listing and its pictures. Admins may delete any
// listing; sellers only their own.
// DELETE /api/property/{id}
func (pc *PropertyController) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid property id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var property models.Property
	if err := pc.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "property not found")
		return
	}
	if claims.Role != models.RoleAdmin && property.SellerID.Hex() != claims.UserID {
		writeError(w, http.StatusForbidden, codeForbidden, "unauthorized to delete this property")
		return
	}

	// Picture deletion failures must not block removing the listing.
	for _, picture := range property.Pictures {
		if picture.PublicID == "" {
			continue
		}
		if err := pc.Images.Delete(r.Context(), picture.PublicID); err != nil {
			pc.Log.WithError(err).WithField("public_id", picture.PublicID).Error("delete picture")
		}
	}

	if _, err := pc.Collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		pc.Log.WithError(err).Error("delete property")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "error deleting property")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Property deleted successfully"})
}

// GetProperties lists properties with filtering, sorting and pagination.
// GET /api/property
func (pc *PropertyController) GetProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := bson.M{}
	price := bson.M{}
	if v := q.Get("minPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			price["$gte"] = f
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			price["$lte"] = f
		}
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if v := q.Get("type"); v != "" {
		filter["type"] = v
	}
	if v := q.Get("status"); v != "" {
		filter["status"] = v
	}
	if v := q.Get("city"); v != "" {
		filter["address.city"] = v
	}
	if v := q.Get("bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter["bedrooms"] = bson.M{"$gte": n}
		}
	}
	if v := q.Get("bathrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter["bathrooms"] = bson.M{"$gte": n}
		}
	}

	sortBy := q.Get("sortBy")
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := -1
	if q.Get("sortOrder") == "asc" {
		sortOrder = 1
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: sortOrder}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := pc.Collection.Find(ctx, filter, opts)
	if err != nil {
		pc.Log.WithError(err).Error("find properties")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "error fetching properties")
		return
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		pc.Log.WithError(err).Error("decode properties")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "error fetching properties")
		return
	}

	total, err := pc.Collection.CountDocuments(ctx, filter)
	if err != nil {
		pc.Log.WithError(err).Error("count properties")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "error fetching properties")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalProperties": total,
		"currentPage":     page,
		"totalPages":      int(math.Ceil(float64(total) / float64(limit))),
		"properties":      properties,
	})
}

// GetPropertyByID returns a single listing.
// GET /api/property/{id}
func (pc *PropertyController) GetPropertyByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid property id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var property models.Property
	if err := pc.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "property not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"property": property})
}

func (pc *PropertyController) uploadPictures(ctx context.Context, files []*multipart.FileHeader) ([]models.PropertyImage, error) {
	pictures := make([]models.PropertyImage, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		image, err := pc.Images.Upload(ctx, file)
		file.Close()
		if err != nil {
			return nil, err
		}
		pictures = append(pictures, image)
	}
	return pictures, nil
}

// propertyFromForm parses the non-file fields of a listing form.
func propertyFromForm(r *http.Request) (models.Property, error) {
	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price <= 0 {
		return models.Property{}, models.ErrInvalidPrice
	}
	size, _ := strconv.ParseFloat(r.FormValue("size"), 64)
	bedrooms, _ := strconv.Atoi(r.FormValue("bedrooms"))
	bathrooms, _ := strconv.Atoi(r.FormValue("bathrooms"))

	var address models.Address
	if raw := r.FormValue("address"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &address); err != nil {
			return models.Property{}, err
		}
	}

	return models.Property{
		Name:        r.FormValue("name"),
		Type:        r.FormValue("type"),
		Address:     address,
		Size:        size,
		Bedrooms:    bedrooms,
		Bathrooms:   bathrooms,
		Price:       price,
		ContactInfo: r.FormValue("contactInfo"),
	}, nil
}
