package controllers

import (
	"net/http"

	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/dtos"
	"github.com/doctrina/mono-repo/backend/services/lms-service/internal/services"
	"github.com/doctrina/mono-repo/backend/shared/go-models"
	"github.com/doctrina/mono-repo/backend/shared/go-utils"
	"github.com/gorilla/mux"
)

type CertificateController struct {
	certificateService *services.CertificateService
}

func NewCertificateController(certificateService *services.CertificateService) *CertificateController {
	return &CertificateController{certificateService: certificateService}
}

// IssueHandler -> POST /api/v1/lms/certificates
// Responds 201 for a new certificate and 200 when one already existed.
func (c *CertificateController) IssueHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dtos.IssueCertificateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	cert, created, err := c.certificateService.Issue(r.Context(), user, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.RespondWithJSON(w, status, dtos.IssueCertificateResponse{Certificate: cert, Created: created})
}

// ListHandler -> GET /api/v1/lms/certificates
func (c *CertificateController) ListHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := c.certificateService.List(r.Context(), user.ID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if list == nil {
		list = []*models.Certificate{}
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.ListCertificatesResponse{Certificates: list})
}

// GetHandler -> GET /api/v1/lms/certificates/{id}
func (c *CertificateController) GetHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	cert, err := c.certificateService.GetForUser(r.Context(), user.ID, id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cert)
}

// VerifyHandler -> GET /api/v1/lms/certificates/verify/{code} (public)
func (c *CertificateController) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	cert, err := c.certificateService.Verify(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewVerifyCertificateResponse(cert))
}
