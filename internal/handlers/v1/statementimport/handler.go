package statementimport

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/budget-ledger/internal/handlers/common"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/normalize"
	"github.com/carson-networks/budget-ledger/internal/service"
	"github.com/carson-networks/budget-ledger/internal/statement"
)

type PreviewInput struct {
	common.UserHeader
	Limit int `query:"limit" minimum:"0" maximum:"1000" doc:"Maximum previewed rows, 0 for all"`
	Body  ImportBody
}

type PreviewOutput struct {
	Body PreviewResult
}

type ImportInput struct {
	common.UserHeader
	Body ImportBody
}

type ImportOutput struct {
	Body ImportResult
}

type importService interface {
	Preview(ctx context.Context, req *service.ImportRequest) (*service.PreviewResult, error)
	Import(ctx context.Context, req *service.ImportRequest) (*service.ImportResult, error)
}

// ImportHandler handles POST /v1/import/preview and POST /v1/import.
type ImportHandler struct {
	ImportService importService
}

func NewImportHandler(svc importService) *ImportHandler {
	return &ImportHandler{ImportService: svc}
}

func (h *ImportHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "preview-import",
		Method:      http.MethodPost,
		Path:        "/v1/import/preview",
		Summary:     "Preview a statement import",
		Description: "Parses and normalizes a statement file without writing anything.",
		Tags:        []string{"Import"},
	}, h.preview)
	huma.Register(api, huma.Operation{
		OperationID: "import-statement",
		Method:      http.MethodPost,
		Path:        "/v1/import",
		Summary:     "Import a statement",
		Description: "Creates transactions from a statement file. Rows already imported are skipped.",
		Tags:        []string{"Import"},
	}, h.importStatement)
}

func buildRequest(userID uuid.UUID, body *ImportBody) (*service.ImportRequest, error) {
	req := &service.ImportRequest{
		UserID:         userID,
		Data:           body.Content,
		Format:         statement.Format(body.Format),
		Filename:       body.Filename,
		SkipDuplicates: body.SkipDuplicates,
	}
	if len(req.Data) == 0 {
		req.Data = []byte(body.Text)
	}
	if len(req.Data) == 0 {
		return nil, huma.NewError(http.StatusBadRequest, "content or text is required")
	}

	accountID, err := common.ParseOptionalID("accountId", body.AccountID)
	if err != nil {
		return nil, err
	}
	if accountID != nil {
		req.AccountID = *accountID
	}

	if m := body.Mapping; m != nil {
		req.Mapping = &normalize.ColumnMapping{
			Date:        m.Date,
			Amount:      m.Amount,
			Description: m.Description,
			Type:        m.Type,
			Vendor:      m.Vendor,
			Reference:   m.Reference,
			DateFormat:  m.DateFormat,
		}
	}

	if len(body.AccountMapping) > 0 {
		req.AccountMapping = make(map[string]uuid.UUID, len(body.AccountMapping))
		for source, dest := range body.AccountMapping {
			id, err := common.ParseID("accountMapping["+source+"]", dest)
			if err != nil {
				return nil, err
			}
			req.AccountMapping[source] = id
		}
	}
	return req, nil
}

func (h *ImportHandler) preview(ctx context.Context, input *PreviewInput) (*PreviewOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	req, err := buildRequest(userID, &input.Body)
	if err != nil {
		return nil, err
	}
	req.Limit = input.Limit

	stop := logging.Timed(ctx, "previewImportMs")
	result, err := h.ImportService.Preview(ctx, req)
	stop()
	if err != nil {
		return nil, common.Error(err, "failed to preview import")
	}

	logging.AddData(ctx, "totalRows", result.TotalRows)
	return &PreviewOutput{Body: toPreview(result)}, nil
}

func (h *ImportHandler) importStatement(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	userID, err := input.User()
	if err != nil {
		return nil, err
	}
	req, err := buildRequest(userID, &input.Body)
	if err != nil {
		return nil, err
	}

	stop := logging.Timed(ctx, "importMs")
	result, err := h.ImportService.Import(ctx, req)
	stop()
	if err != nil {
		return nil, common.Error(err, "failed to import statement")
	}

	logging.AddData(ctx, "imported", result.Imported)
	logging.AddData(ctx, "skipped", result.Skipped)
	return &ImportOutput{Body: toImportResult(result)}, nil
}
