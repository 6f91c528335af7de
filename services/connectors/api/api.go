package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/intellsys-io/intellsys-engine/services/connectors/api/entity"
	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
	"github.com/intellsys-io/intellsys-engine/services/connectors/service"
)

type API struct {
	logger       *zap.Logger
	provisioning *service.Provisioning
	teardown     *service.Teardown
	directory    *service.Directory
}

func New(
	logger *zap.Logger,
	provisioning *service.Provisioning,
	teardown *service.Teardown,
	directory *service.Directory,
) *API {
	return &API{
		logger:       logger.Named("api"),
		provisioning: provisioning,
		teardown:     teardown,
		directory:    directory,
	}
}

func (h *API) Register(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	v1.POST("/connectors", h.ProvisionConnector)
	v1.DELETE("/connectors/:connectorId", h.TeardownConnector)
	v1.POST("/connectors/:connectorId/ingestion-table", h.RetryIngestionTable)
	v1.POST("/connectors/:connectorId/ingestion", h.RetryIngestion)

	v1.GET("/companies/:companyId/connectors", h.ListCompanyConnectors)
	v1.GET("/companies/:companyId/destination", h.GetDestination)
	v1.PUT("/companies/:companyId/destination", h.SetDestination)
}

// ProvisionConnector godoc
//
//	@Summary	Attach an external platform account as a connector
//	@Tags		connectors
//	@Accept		json
//	@Produce	json
//	@Param		request	body		entity.ProvisionConnectorRequest	true	"Request"
//	@Success	201		{object}	entity.ProvisionConnectorResponse
//	@Router		/api/v1/connectors [post]
func (h *API) ProvisionConnector(ctx echo.Context) error {
	var req entity.ProvisionConnectorRequest
	if err := bindValidate(ctx, &req); err != nil {
		return err
	}

	if _, err := model.ParseConnectorType(string(req.ConnectorType)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := h.provisioning.Provision(ctx.Request().Context(), service.ProvisionRequest{
		CompanyID:     req.CompanyID,
		ConnectorID:   req.ConnectorID,
		ConnectorType: req.ConnectorType,
		DisplayName:   req.DisplayName,
		Credentials: model.SourceCredentials{
			RefreshToken: req.Credentials.RefreshToken,
			AccountID:    req.Credentials.AccountID,
			Extra:        req.Credentials.Extra,
		},
		ExtraInformation: req.ExtraInformation,
	})

	resp := entity.ProvisionConnectorResponse{ConnectorID: req.ConnectorID, IngestReady: true}

	switch {
	case err == nil:
		return ctx.JSON(http.StatusCreated, resp)
	case isCommittedWarning(err):
		// The connector is registered; only a post-commit step failed and it
		// can be retried through the dedicated endpoints.
		resp.IngestReady = false
		resp.Warning = err.Error()
		return ctx.JSON(http.StatusCreated, resp)
	default:
		return h.httpError(ctx, err)
	}
}

// TeardownConnector godoc
//
//	@Summary	Detach a connector and remove its resources
//	@Tags		connectors
//	@Produce	json
//	@Param		connectorId	path		string	true	"Connector ID"
//	@Success	200			{object}	entity.TeardownResponse
//	@Router		/api/v1/connectors/{connectorId} [delete]
func (h *API) TeardownConnector(ctx echo.Context) error {
	connectorID, err := uuid.Parse(ctx.Param("connectorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid connector id")
	}

	report := h.teardown.Deprovision(ctx.Request().Context(), connectorID)

	resp := entity.TeardownResponse{
		ConnectorID: connectorID,
		Complete:    report.Ok(),
	}
	for _, f := range report.Failures {
		resp.Failures = append(resp.Failures, entity.StepFailure{
			Step:  f.Step,
			Error: f.Err.Error(),
		})
	}

	status := http.StatusOK
	if !report.Ok() {
		status = http.StatusBadGateway
	}

	return ctx.JSON(status, resp)
}

func (h *API) RetryIngestionTable(ctx echo.Context) error {
	connectorID, err := uuid.Parse(ctx.Param("connectorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid connector id")
	}

	if err := h.provisioning.RetryIngestionTable(ctx.Request().Context(), connectorID); err != nil {
		return h.httpError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (h *API) RetryIngestion(ctx echo.Context) error {
	connectorID, err := uuid.Parse(ctx.Param("connectorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid connector id")
	}

	var req entity.RetryIngestionRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.provisioning.RetryIngestion(ctx.Request().Context(), connectorID, req.DurationDays); err != nil {
		return h.httpError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ListCompanyConnectors godoc
//
//	@Summary	List a company's connectors
//	@Tags		connectors
//	@Produce	json
//	@Param		companyId	path	string	true	"Company ID"
//	@Success	200	{object}	[]entity.Connector
//	@Router		/api/v1/companies/{companyId}/connectors [get]
func (h *API) ListCompanyConnectors(ctx echo.Context) error {
	companyID, err := uuid.Parse(ctx.Param("companyId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	rows, err := h.directory.CompanyConnectors(ctx.Request().Context(), companyID)
	if err != nil {
		return h.httpError(ctx, err)
	}

	resp := make([]entity.Connector, 0, len(rows))
	for _, r := range rows {
		e := entity.Connector{
			ID:            r.Mapping.ConnectorID,
			Name:          r.Mapping.DisplayName,
			ConnectorType: r.Mapping.ConnectorType,
			CreatedAt:     r.Mapping.CreatedAt,
			Orphaned:      r.Registry == nil,
		}
		if r.Registry != nil {
			e.AccountKey = r.Registry.AccountKey
			e.ExtraInformation = decodeExtra(r.Registry.ExtraInformation)
		}
		resp = append(resp, e)
	}

	return ctx.JSON(http.StatusOK, resp)
}

func (h *API) GetDestination(ctx echo.Context) error {
	companyID, err := uuid.Parse(ctx.Param("companyId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	m, err := h.directory.Destination(ctx.Request().Context(), companyID)
	if err != nil {
		return h.httpError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, entity.DestinationResponse{
		CompanyID:               m.CompanyID,
		DestinationCredentialID: m.DestinationCredentialID,
	})
}

func (h *API) SetDestination(ctx echo.Context) error {
	companyID, err := uuid.Parse(ctx.Param("companyId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid company id")
	}

	var req entity.SetDestinationRequest
	if err := bindValidate(ctx, &req); err != nil {
		return err
	}

	if err := h.directory.SetDestination(ctx.Request().Context(), companyID, req.DestinationCredentialID); err != nil {
		return h.httpError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, entity.DestinationResponse{
		CompanyID:               companyID,
		DestinationCredentialID: req.DestinationCredentialID,
	})
}

func (h *API) httpError(ctx echo.Context, err error) error {
	var unreachable *service.UnreachableError
	var partial *service.PartialCommitError

	switch {
	case errors.Is(err, service.ErrDestinationNotConfigured):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConnectorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateConnector):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &partial):
		h.logger.Error("partial commit surfaced to caller", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	case errors.As(err, &unreachable):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func isCommittedWarning(err error) bool {
	var tle *service.TableLifecycleError
	var ite *service.IngestTriggerError

	return errors.As(err, &tle) || errors.As(err, &ite)
}

func bindValidate(ctx echo.Context, i any) error {
	if err := ctx.Bind(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := ctx.Validate(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

func decodeExtra(raw []byte) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}

	return m
}
