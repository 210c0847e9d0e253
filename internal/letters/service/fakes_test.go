package service

import (
	"context"
	"fmt"
	"time"

	clientdomain "github.com/ledgerdesk/ledgerdesk-backend/internal/clients/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/domain"
	"github.com/ledgerdesk/ledgerdesk-backend/internal/letters/storage"
	"github.com/ledgerdesk/ledgerdesk-backend/pkg/errors"
)

type fakeTemplateRepo struct {
	templates map[string]*domain.Template
	versions  map[string][]*domain.TemplateVersion
	seq       int
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{
		templates: make(map[string]*domain.Template),
		versions:  make(map[string][]*domain.TemplateVersion),
	}
}

func (f *fakeTemplateRepo) Create(_ context.Context, tpl *domain.Template) error {
	f.seq++
	if tpl.ID == "" {
		tpl.ID = fmt.Sprintf("t-%d", f.seq)
	}
	tpl.Version = 1
	tpl.CreatedAt = time.Now()
	tpl.UpdatedAt = tpl.CreatedAt
	f.templates[tpl.ID] = tpl
	return nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id string) (*domain.Template, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return nil, errors.TemplateNotFound(id)
	}
	copied := *tpl
	return &copied, nil
}

func (f *fakeTemplateRepo) List(_ context.Context, _ string, _ bool) ([]*domain.Template, error) {
	var out []*domain.Template
	for _, tpl := range f.templates {
		out = append(out, tpl)
	}
	return out, nil
}

func (f *fakeTemplateRepo) Update(_ context.Context, tpl *domain.Template) error {
	prior, ok := f.templates[tpl.ID]
	if !ok {
		return errors.TemplateNotFound(tpl.ID)
	}
	f.versions[tpl.ID] = append(f.versions[tpl.ID], &domain.TemplateVersion{
		TemplateID: tpl.ID,
		Version:    prior.Version,
		Name:       prior.Name,
		FilePath:   prior.FilePath,
	})
	tpl.Version = prior.Version + 1
	f.templates[tpl.ID] = tpl
	return nil
}

func (f *fakeTemplateRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.templates[id]; !ok {
		return errors.TemplateNotFound(id)
	}
	delete(f.templates, id)
	return nil
}

func (f *fakeTemplateRepo) ListVersions(_ context.Context, templateID string) ([]*domain.TemplateVersion, error) {
	return f.versions[templateID], nil
}

type fakeLetterRepo struct {
	letters map[string]*domain.GeneratedLetter
	seq     int
}

func newFakeLetterRepo() *fakeLetterRepo {
	return &fakeLetterRepo{letters: make(map[string]*domain.GeneratedLetter)}
}

func (f *fakeLetterRepo) Create(_ context.Context, letter *domain.GeneratedLetter) error {
	f.seq++
	letter.ID = fmt.Sprintf("l-%d", f.seq)
	if letter.Status == "" {
		letter.Status = domain.LetterStatusDraft
	}
	letter.CreatedAt = time.Now()
	f.letters[letter.ID] = letter
	return nil
}

func (f *fakeLetterRepo) GetByID(_ context.Context, id string) (*domain.GeneratedLetter, error) {
	letter, ok := f.letters[id]
	if !ok {
		return nil, errors.LetterNotFound(id)
	}
	return letter, nil
}

func (f *fakeLetterRepo) List(_ context.Context, _, _ string, _, _ int) ([]*domain.GeneratedLetter, int64, error) {
	var out []*domain.GeneratedLetter
	for _, l := range f.letters {
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLetterRepo) UpdateStatus(_ context.Context, id, status string) error {
	letter, ok := f.letters[id]
	if !ok {
		return errors.LetterNotFound(id)
	}
	letter.Status = status
	return nil
}

func (f *fakeLetterRepo) RecordDownload(_ context.Context, id string) (int, error) {
	letter, ok := f.letters[id]
	if !ok {
		return 0, errors.LetterNotFound(id)
	}
	letter.DownloadCount++
	letter.Status = domain.LetterStatusDownloaded
	return letter.DownloadCount, nil
}

type fakeStore struct {
	docs         map[string]*domain.StoredDocument
	files        map[string][]byte
	templateBody string
	failArchive  bool
	seq          int
}

func newFakeStore(templateBody string) *fakeStore {
	return &fakeStore{
		docs:         make(map[string]*domain.StoredDocument),
		files:        make(map[string][]byte),
		templateBody: templateBody,
	}
}

func (f *fakeStore) Upload(_ context.Context, data []byte, meta storage.UploadMeta) (*domain.StoredDocument, error) {
	if f.failArchive && meta.Kind == domain.DocumentKindArchive {
		return nil, fmt.Errorf("disk full")
	}
	f.seq++
	doc := &domain.StoredDocument{
		ID:          fmt.Sprintf("d-%d", f.seq),
		FileName:    meta.FileName,
		FilePath:    fmt.Sprintf("/mem/d-%d", f.seq),
		ContentType: meta.ContentType,
		SizeBytes:   int64(len(data)),
		Kind:        meta.Kind,
		UploadedBy:  meta.UploadedBy,
		CreatedAt:   time.Now(),
	}
	f.docs[doc.ID] = doc
	f.files[doc.ID] = data
	return doc, nil
}

func (f *fakeStore) GetFile(_ context.Context, id string) ([]byte, *domain.StoredDocument, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, nil, errors.NotFound("document")
	}
	return f.files[id], doc, nil
}

func (f *fakeStore) ReadTemplateFile(_ string) (string, error) {
	return f.templateBody, nil
}

// lastDocOfKind returns the most recently uploaded document of a kind
func (f *fakeStore) lastDocOfKind(kind string) *domain.StoredDocument {
	var latest *domain.StoredDocument
	for _, doc := range f.docs {
		if doc.Kind != kind {
			continue
		}
		if latest == nil || doc.ID > latest.ID {
			latest = doc
		}
	}
	return latest
}

type fakeDirectory struct {
	clients map[string]*clientdomain.Client
	bundles map[string]map[string]interface{}
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		clients: make(map[string]*clientdomain.Client),
		bundles: make(map[string]map[string]interface{}),
	}
}

func (f *fakeDirectory) addClient(id, name string, bundle map[string]interface{}) {
	f.clients[id] = &clientdomain.Client{ID: id, Name: name, Type: clientdomain.ClientTypeCompany}
	if bundle == nil {
		bundle = map[string]interface{}{}
	}
	bundle["name"] = name
	f.bundles[id] = bundle
}

func (f *fakeDirectory) FindClient(_ context.Context, clientID string) (*clientdomain.Client, error) {
	client, ok := f.clients[clientID]
	if !ok {
		return nil, errors.ClientNotFound(clientID)
	}
	return client, nil
}

func (f *fakeDirectory) ClientBundle(_ context.Context, clientID string) (map[string]interface{}, error) {
	bundle, ok := f.bundles[clientID]
	if !ok {
		return nil, errors.ClientNotFound(clientID)
	}
	return bundle, nil
}

func (f *fakeDirectory) ServiceBundle(_ context.Context, _ string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (f *fakeDirectory) UserBundle(_ context.Context, _ string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}
