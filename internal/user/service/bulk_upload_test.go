package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/procurehq/procure/internal/user/domain"
	"github.com/procurehq/procure/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

func csvUpload(rows ...string) domain.BulkUploadRequest {
	body := "email,full_name,role,bid_role,district_id,school_id\n" + strings.Join(rows, "\n")
	return domain.BulkUploadRequest{
		FileName:    "users.csv",
		ContentType: "text/csv",
		Data:        []byte(body),
	}
}

func TestBulkUploadUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non csv content type", func(t *testing.T) {
		f := newFixture(t)
		inviter := f.seedUser(t, "admin@example.com")

		req := csvUpload("new@example.com,New User,,,,")
		req.ContentType = "application/json"
		_, err := f.svc.BulkUploadUsers(ctx, inviter.ID, req)
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindBadRequest, kind)
	})

	t.Run("accepts charset parameter", func(t *testing.T) {
		f := newFixture(t)
		inviter := f.seedUser(t, "admin@example.com")

		req := csvUpload("new@example.com,New User,,,,")
		req.ContentType = "text/csv; charset=utf-8"
		if _, err := f.svc.BulkUploadUsers(ctx, inviter.ID, req); err != nil {
			t.Fatalf("upload: %v", err)
		}
	})

	t.Run("rejects missing required column without audit row", func(t *testing.T) {
		f := newFixture(t)
		inviter := f.seedUser(t, "admin@example.com")

		req := domain.BulkUploadRequest{
			FileName:    "users.csv",
			ContentType: "text/csv",
			Data:        []byte("email,full_name\nnew@example.com,New User\n"),
		}
		_, err := f.svc.BulkUploadUsers(ctx, inviter.ID, req)
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindBadRequest, kind)

		var count int64
		if err := f.db.Model(&domain.BulkUpload{}).Count(&count).Error; err != nil {
			t.Fatalf("count uploads: %v", err)
		}
		assert.EqualValues(t, 0, count)
	})

	t.Run("partial failure never aborts the batch", func(t *testing.T) {
		f := newFixture(t)
		inviter := f.seedUser(t, "admin@example.com")
		f.seedUser(t, "taken1@example.com")
		f.seedUser(t, "taken2@example.com")

		rows := []string{
			"taken1@example.com,Taken One,,,,", // existing user
			"taken2@example.com,Taken Two,,,,", // existing user
			",No Email,,,,",                    // missing email
		}
		for i := 0; i < 7; i++ {
			rows = append(rows, fmt.Sprintf("new%d@example.com,New %d,,,,", i, i))
		}

		resp, err := f.svc.BulkUploadUsers(ctx, inviter.ID, csvUpload(rows...))
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		assert.Equal(t, 10, resp.TotalRows)
		assert.Equal(t, 7, resp.ProcessedRows)
		assert.Equal(t, 3, resp.FailedRows)
		assert.Contains(t, resp.Message, "7")
		assert.Contains(t, resp.Message, "3")

		var upload domain.BulkUpload
		if err := f.db.First(&upload).Error; err != nil {
			t.Fatalf("load audit row: %v", err)
		}
		assert.Equal(t, domain.BulkUploadCompleted, upload.Status)
		assert.Equal(t, 7, upload.ProcessedRows)
		assert.Equal(t, 3, upload.FailedRows)
		assert.Contains(t, upload.ErrorText, "row 2")
		assert.NotContains(t, upload.ErrorText, "more errors")
	})

	t.Run("error text reports the first ten failures", func(t *testing.T) {
		f := newFixture(t)
		inviter := f.seedUser(t, "admin@example.com")

		var rows []string
		for i := 0; i < 13; i++ {
			rows = append(rows, ",Missing Email,,,,")
		}

		resp, err := f.svc.BulkUploadUsers(ctx, inviter.ID, csvUpload(rows...))
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		assert.Equal(t, 13, resp.FailedRows)

		var upload domain.BulkUpload
		if err := f.db.First(&upload).Error; err != nil {
			t.Fatalf("load audit row: %v", err)
		}
		assert.Equal(t, 10, strings.Count(upload.ErrorText, "row "))
		assert.Contains(t, upload.ErrorText, "and 3 more errors")
	})

	t.Run("empty file", func(t *testing.T) {
		f := newFixture(t)
		inviter := f.seedUser(t, "admin@example.com")

		req := domain.BulkUploadRequest{FileName: "users.csv", ContentType: "text/csv", Data: nil}
		_, err := f.svc.BulkUploadUsers(ctx, inviter.ID, req)
		kind, ok := apperror.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, apperror.KindBadRequest, kind)
	})
}
