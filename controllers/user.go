package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"go-propmarket/models"
	"go-propmarket/utils"
)

var emailPattern = regexp.MustCompile(`.+@.+\..+`)

// UserController handles registration, login and logout.
type UserController struct {
	Collection *mongo.Collection
	Tokens     *utils.TokenManager
	Log        logrus.FieldLogger
}

func NewUserController(db *mongo.Database, tokens *utils.TokenManager, log logrus.FieldLogger) *UserController {
	return &UserController{
		Collection: db.Collection("users"),
		Tokens:     tokens,
		Log:        log,
	}
}

// Register handles user registration.
// POST /api/auth/register {name, email, password, role}
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid request body")
		return
	}
	if req.Name == "" || req.Password == "" || !emailPattern.MatchString(req.Email) {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "name, email and password are required")
		return
	}
	switch req.Role {
	case "":
		req.Role = models.RoleBuyer
	case models.RoleBuyer, models.RoleSeller, models.RoleAdmin:
	default:
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid role")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	count, err := uc.Collection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		uc.Log.WithError(err).Error("check existing user")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "database unavailable")
		return
	}
	if count > 0 {
		writeError(w, http.StatusBadRequest, codeConflict, "user already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "error hashing password")
		return
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      req.Role,
		CreatedAt: time.Now(),
	}
	if _, err := uc.Collection.InsertOne(ctx, user); err != nil {
		uc.Log.WithError(err).Error("insert user")
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, "error creating user")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login verifies credentials and issues a JWT.
// POST /api/auth/login {email, password}
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var user models.User
	err := uc.Collection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "user not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid credentials")
		return
	}

	token, err := uc.Tokens.Generate(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		uc.Log.WithError(err).Error("generate token")
		writeError(w, http.StatusInternalServerError, codeInternalError, "error generating token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user": map[string]interface{}{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Logout is stateless; clients discard the bearer token.
// POST /api/auth/logout
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}
