package controllers

import (
	"net/http"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/services"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
)

type PurchaseController struct {
	purchaseService *services.PurchaseService
}

func NewPurchaseController(purchaseService *services.PurchaseService) *PurchaseController {
	return &PurchaseController{purchaseService: purchaseService}
}

// CheckoutHandler -> POST /api/v1/lms/checkout
func (c *PurchaseController) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dtos.CreateCheckoutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := c.purchaseService.CreateCheckout(r.Context(), user, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ListPurchasesHandler -> GET /api/v1/lms/purchases
func (c *PurchaseController) ListPurchasesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := c.purchaseService.ListPurchases(r.Context(), user.ID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	resp := dtos.ListPurchasesResponse{Purchases: make([]dtos.PurchaseResponse, 0, len(list))}
	for _, p := range list {
		resp.Purchases = append(resp.Purchases, dtos.NewPurchaseResponse(p))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ListEnrollmentsHandler -> GET /api/v1/lms/enrollments
func (c *PurchaseController) ListEnrollmentsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := c.purchaseService.ListEnrollments(r.Context(), user.ID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if list == nil {
		list = []*models.Enrollment{}
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ListEnrollmentsResponse{Enrollments: list})
}

// CourseSalesHandler -> GET /api/v1/lms/instructor/courses/{courseId}/sales
func (c *PurchaseController) CourseSalesHandler(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathUUID(w, r, "courseId")
	if !ok {
		return
	}
	sales, err := c.purchaseService.SalesForCourse(r.Context(), courseID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewCourseSalesResponse(sales))
}

// GetCoursePriceHandler -> GET /api/v1/lms/courses/{courseId}/price
func (c *PurchaseController) GetCoursePriceHandler(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathUUID(w, r, "courseId")
	if !ok {
		return
	}
	price, err := c.purchaseService.GetCoursePrice(r.Context(), courseID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewCoursePriceResponse(price))
}

// SetCoursePriceHandler -> PUT /api/v1/lms/instructor/courses/{courseId}/price
func (c *PurchaseController) SetCoursePriceHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	courseID, ok := pathUUID(w, r, "courseId")
	if !ok {
		return
	}
	var req dtos.SetCoursePriceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	price, err := c.purchaseService.SetCoursePrice(r.Context(), user, courseID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewCoursePriceResponse(price))
}
