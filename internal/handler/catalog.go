package handler

import (
	"net/http"

	"tileledger/internal/dto"
	"tileledger/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves products, customers and suppliers.
type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ── Products ──────────────────────────────────────────────────────────────────

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	resp, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateProduct godoc
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param body body dto.ProductRequest true "Product"
// @Success 201 {object} model.Product
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/products [post]
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EnsureProduct finds a product by (name, size, unit) or creates it.
func (h *CatalogHandler) EnsureProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EnsureProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(ensureStatus(resp), resp)
}

func ensureStatus(resp *dto.EnsureResponse) int {
	if resp.Created {
		return http.StatusCreated
	}
	return http.StatusOK
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	resp, err := h.svc.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req dto.PartyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddCustomer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) EnsureCustomer(c *gin.Context) {
	var req dto.PartyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EnsureCustomerByName(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(ensureStatus(resp), resp)
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	resp, err := h.svc.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req dto.PartyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddSupplier(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) EnsureSupplier(c *gin.Context) {
	var req dto.PartyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EnsureSupplierByName(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(ensureStatus(resp), resp)
}
