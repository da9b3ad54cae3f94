package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"contracting/internal/blob"
	"contracting/internal/domain"
	"contracting/internal/repository"
)

func (s *Service) ListAttachments(ctx context.Context, contractID string) ([]domain.Attachment, error) {
	return s.repo.ListAttachments(ctx, contractID)
}

// UploadAttachment stores the file under "{contractID}/{random}{ext}" and
// records the object path. If the row cannot be written the object is
// removed again.
func (s *Service) UploadAttachment(ctx context.Context, contractID, fileName, contentType string, body io.Reader) (domain.Attachment, error) {
	if s.blobs == nil {
		return domain.Attachment{}, fmt.Errorf("attachment storage: %w", ErrUnavailable)
	}
	if _, err := s.repo.GetContract(ctx, contractID); err != nil {
		return domain.Attachment{}, err
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return domain.Attachment{}, invalid("file name is required")
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(path.Ext(fileName)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectPath := blob.AttachmentPath(contractID, fileName)
	if err := s.blobs.Upload(ctx, s.bucket, objectPath, body, contentType); err != nil {
		return domain.Attachment{}, fmt.Errorf("upload attachment: %w", err)
	}

	a, err := s.repo.CreateAttachment(ctx, repository.AttachmentCreateInput{
		ContractID: contractID,
		FileURL:    objectPath,
		FileType:   contentType,
	})
	if err != nil {
		if rmErr := s.blobs.Remove(ctx, s.bucket, []string{objectPath}); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("path", objectPath).Msg("failed to remove orphaned attachment")
		}
		return domain.Attachment{}, err
	}
	s.audit.Record(ctx, domain.ActionCreate, domain.EntityAttachment, a.ID, map[string]any{
		"contract_id": contractID,
		"file_name":   fileName,
		"file_type":   contentType,
	})
	return a, nil
}

// AttachmentURL returns a time-limited download link.
func (s *Service) AttachmentURL(ctx context.Context, id string) (string, error) {
	if s.blobs == nil {
		return "", fmt.Errorf("attachment storage: %w", ErrUnavailable)
	}
	a, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return "", err
	}
	url, err := s.blobs.SignedURL(ctx, s.bucket, blob.PathFromURL(a.FileURL), s.signedTTL)
	if err != nil {
		return "", fmt.Errorf("sign attachment url: %w", err)
	}
	return url, nil
}

// DeleteAttachment removes the stored file first. A storage failure is
// logged and the row is deleted anyway.
func (s *Service) DeleteAttachment(ctx context.Context, id string) error {
	a, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	if s.blobs != nil {
		if err := s.blobs.Remove(ctx, s.bucket, []string{blob.PathFromURL(a.FileURL)}); err != nil {
			s.logger.Warn().Err(err).Str("attachment_id", id).Str("path", a.FileURL).
				Msg("failed to remove attachment from storage")
		}
	}
	if err := s.repo.DeleteAttachment(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, domain.ActionDelete, domain.EntityAttachment, id, map[string]any{
		"contract_id": a.ContractID,
		"file_url":    a.FileURL,
	})
	return nil
}
