package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/furkanbegen/credit-module/internal/domain"
	"github.com/furkanbegen/credit-module/internal/service"
	customError "github.com/furkanbegen/credit-module/pkg/errors"
	"github.com/furkanbegen/credit-module/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	v := validator.New()

	// Let the numeric tags (gt, gte, lte) see decimal fields as floats.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &LoanHandler{
		service:   service,
		validator: v,
	}
}

// CreateLoan handles POST /customers/{customerId}/loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	customerID, ok := parseUUID(w, r, "customerId")
	if !ok {
		return
	}

	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), customerID, &request)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Created(w, domain.CreateLoanResponse{Loan: loan})
}

// GetLoans handles GET /customers/{customerId}/loans
func (h *LoanHandler) GetLoans(w http.ResponseWriter, r *http.Request) {
	customerID, ok := parseUUID(w, r, "customerId")
	if !ok {
		return
	}

	filter, err := parseLoanFilter(r)
	if err != nil {
		response.BadRequest(w, "Invalid filter", err)
		return
	}

	loans, err := h.service.GetLoans(r.Context(), customerID, filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, loans)
}

// GetInstallments handles GET /customers/{customerId}/loans/{loanId}/installments
func (h *LoanHandler) GetInstallments(w http.ResponseWriter, r *http.Request) {
	customerID, ok := parseUUID(w, r, "customerId")
	if !ok {
		return
	}
	loanID, ok := parseUUID(w, r, "loanId")
	if !ok {
		return
	}

	loan, err := h.service.GetLoanWithInstallments(r.Context(), customerID, loanID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, loan.Installments)
}

// PayLoan handles POST /customers/{customerId}/loans/{loanId}/pay
func (h *LoanHandler) PayLoan(w http.ResponseWriter, r *http.Request) {
	customerID, ok := parseUUID(w, r, "customerId")
	if !ok {
		return
	}
	loanID, ok := parseUUID(w, r, "loanId")
	if !ok {
		return
	}

	var request domain.PayLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.PayLoan(r.Context(), customerID, loanID, &request)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, result)
}

func parseUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func parseLoanFilter(r *http.Request) (*domain.LoanFilter, error) {
	query := r.URL.Query()
	filter := &domain.LoanFilter{}

	if raw := query.Get("isPaid"); raw != "" {
		isPaid, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		filter.IsPaid = &isPaid
	}
	if raw := query.Get("numberOfInstallment"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		filter.NumberOfInstallment = &count
	}
	if raw := query.Get("isOverdue"); raw != "" {
		isOverdue, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		filter.IsOverdue = &isOverdue
	}

	return filter, nil
}

// writeDomainError maps engine and lookup errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customError.ErrCustomerNotFound),
		errors.Is(err, customError.ErrLoanNotFound):
		response.NotFound(w, "Resource not found", err)
	case errors.Is(err, customError.ErrInsufficientCredit):
		response.UnprocessableEntity(w, "Insufficient credit limit", err)
	case errors.Is(err, customError.ErrLoanAlreadyPaid),
		errors.Is(err, customError.ErrNoPayableInstallments):
		response.Conflict(w, "Loan is not payable", err)
	case errors.Is(err, customError.ErrInsufficientPaymentAmount),
		errors.Is(err, customError.ErrInvalidLoanAmount),
		errors.Is(err, customError.ErrInvalidInterestRate),
		errors.Is(err, customError.ErrInvalidInstallmentCount),
		errors.Is(err, customError.ErrInvalidPaymentAmount):
		response.BadRequest(w, "Invalid request", err)
	default:
		response.InternalServerError(w, "Internal server error", err)
	}
}
