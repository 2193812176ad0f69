package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/procure/internal/user/domain"
	"github.com/procurehq/procure/pkg/apperror"
	"go.uber.org/zap"
)

// requiredColumns must all be present in the upload header row.
var requiredColumns = []string{"email", "full_name", "role", "bid_role", "district_id", "school_id"}

const maxReportedRowErrors = 10

func (s *service) BulkUploadUsers(ctx context.Context, inviterID snowflake.ID, req domain.BulkUploadRequest) (*domain.BulkUploadResponse, error) {
	if mediaType(req.ContentType) != "text/csv" {
		return nil, apperror.BadRequest("file must be text/csv")
	}

	header, rows, err := parseCSV(req.Data)
	if err != nil {
		return nil, err
	}
	if len(rows) > s.cfg.BulkUploadMaxRows {
		return nil, apperror.BadRequest(fmt.Sprintf("file exceeds %d rows", s.cfg.BulkUploadMaxRows))
	}

	columns, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	upload := &domain.BulkUpload{
		ID:         s.genID.Generate(),
		FileName:   req.FileName,
		Status:     domain.BulkUploadProcessing,
		TotalRows:  len(rows),
		UploadedBy: inviterID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateBulkUpload(ctx, upload); err != nil {
		return nil, err
	}

	var rowErrors []string
	for i, row := range rows {
		inviteReq, err := rowToInvite(columns, row)
		if err == nil {
			_, err = s.InviteUser(ctx, inviterID, inviteReq)
		}
		if err != nil {
			upload.FailedRows++
			// header is row 1
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		upload.ProcessedRows++
	}

	upload.Status = domain.BulkUploadCompleted
	upload.ErrorText = summarizeRowErrors(rowErrors)
	upload.UpdatedAt = s.clk.Now()
	if err := s.repo.UpdateBulkUpload(ctx, *upload); err != nil {
		return nil, err
	}

	s.log.Info("bulk upload completed",
		zap.String("bulk_upload_id", upload.ID.String()),
		zap.Int("total_rows", upload.TotalRows),
		zap.Int("failed_rows", upload.FailedRows),
	)

	return &domain.BulkUploadResponse{
		Message:       fmt.Sprintf("processed %d users, %d failed", upload.ProcessedRows, upload.FailedRows),
		BulkUploadID:  upload.ID.String(),
		TotalRows:     upload.TotalRows,
		ProcessedRows: upload.ProcessedRows,
		FailedRows:    upload.FailedRows,
	}, nil
}

func (s *service) GenerateBulkUserTemplate(ctx context.Context, callerID snowflake.ID) (*domain.BulkUserTemplate, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(requiredColumns); err != nil {
		return nil, err
	}
	if err := w.Write([]string{"jane.doe@example.com", "Jane Doe", "Bid Manager", "Bid Viewer", "", ""}); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &domain.BulkUserTemplate{
		FileName:    "bulk_user_template.csv",
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

func parseCSV(data []byte) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, apperror.BadRequest("file is empty or not valid CSV")
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, apperror.BadRequest("file is not valid CSV")
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, apperror.BadRequest(fmt.Sprintf("missing required column %q", required))
		}
	}
	return columns, nil
}

func rowToInvite(columns map[string]int, row []string) (domain.InviteUserRequest, error) {
	cell := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	emailAddr := cell("email")
	if emailAddr == "" {
		return domain.InviteUserRequest{}, apperror.BadRequest("email is required")
	}

	req := domain.InviteUserRequest{Email: emailAddr}
	if raw := cell("district_id"); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.InviteUserRequest{}, apperror.BadRequest("invalid district_id")
		}
		req.DistrictID = &id
	}
	return req, nil
}

func summarizeRowErrors(rowErrors []string) string {
	if len(rowErrors) == 0 {
		return ""
	}
	if len(rowErrors) <= maxReportedRowErrors {
		return strings.Join(rowErrors, "; ")
	}
	overflow := len(rowErrors) - maxReportedRowErrors
	return strings.Join(rowErrors[:maxReportedRowErrors], "; ") + fmt.Sprintf(" and %d more errors", overflow)
}

func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
