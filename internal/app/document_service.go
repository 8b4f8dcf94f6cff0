package app

import (
	"strings"

	"docuchat/internal/model"
)

type DocumentWriter interface {
	Create(doc *model.Document) error
}

// DocumentService stores uploaded document text and lists what a requester
// may read. Extraction from the PDF itself happens at the transport edge;
// this layer only sees text.
type DocumentService struct {
	docs     DocumentWriter
	resolver AccessResolver
}

func NewDocumentService(docs DocumentWriter, resolver AccessResolver) *DocumentService {
	return &DocumentService{docs: docs, resolver: resolver}
}

type StoreDocumentInput struct {
	Filename string
	Owner    string
	Role     string
	Text     string
}

// Store persists an extracted document. Only managers own documents.
func (s *DocumentService) Store(input StoreDocumentInput) (*model.Document, error) {
	if input.Role != model.RoleManager {
		return nil, ErrForbidden
	}
	filename := strings.TrimSpace(input.Filename)
	text := strings.TrimSpace(input.Text)
	if filename == "" || input.Owner == "" || text == "" {
		return nil, ErrInvalidInput
	}

	doc := &model.Document{
		Filename:  filename,
		Owner:     input.Owner,
		OwnerRole: input.Role,
		Text:      text,
	}
	if err := s.docs.Create(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListAccessible returns the requester's accessible documents.
func (s *DocumentService) ListAccessible(username, role string) ([]model.Document, error) {
	if username == "" || role == "" {
		return nil, ErrInvalidInput
	}
	return s.resolver.Accessible(username, role)
}
