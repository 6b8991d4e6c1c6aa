package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/mo"

	"github.com/StefanUPB/tng-gtk-common/internal/core"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
)

// Query parameters understood by the catalogue proxy.
const (
	ParamPackageUUID = "package_uuid"
	ParamPageNumber  = "page_number"
	ParamPageSize    = "page_size"
)

// CatalogueServiceOptions groups dependencies for CatalogueService.
type CatalogueServiceOptions struct {
	Catalogue    core.Catalogue // Required
	Materializer *Materializer  // Required
	// DefaultPageNumber and DefaultPageSize fill collection queries that omit them.
	DefaultPageNumber int
	DefaultPageSize   int
	Logger            *slog.Logger
}

// CatalogueService answers package reads from the catalogue.
type CatalogueService struct {
	catalogue    core.Catalogue
	materializer *Materializer
	pageNumber   int
	pageSize     int
	logger       *slog.Logger
}

// NewCatalogueService constructs a CatalogueService.
func NewCatalogueService(opts CatalogueServiceOptions) (*CatalogueService, error) {
	if opts.Catalogue == nil {
		return nil, errors.New("catalogue is required")
	}
	if opts.Materializer == nil {
		return nil, errors.New("materializer is required")
	}
	if opts.DefaultPageNumber < 0 {
		opts.DefaultPageNumber = 0
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 100
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogueService{
		catalogue:    opts.Catalogue,
		materializer: opts.Materializer,
		pageNumber:   opts.DefaultPageNumber,
		pageSize:     opts.DefaultPageSize,
		logger:       logger.With("component", "catalogue_service"),
	}, nil
}

// Metadata returns one package when query carries package_uuid, otherwise a
// page of packages matching the remaining filters.
func (s *CatalogueService) Metadata(ctx context.Context, query url.Values) (mo.Option[json.RawMessage], error) {
	if id := strings.TrimSpace(query.Get(ParamPackageUUID)); id != "" {
		return s.get(ctx, "packages/"+url.PathEscape(id), nil)
	}
	return s.get(ctx, "packages", s.withPagination(query))
}

func (s *CatalogueService) withPagination(query url.Values) url.Values {
	out := make(url.Values, len(query)+2)
	for k, v := range query {
		out[k] = append([]string(nil), v...)
	}
	if out.Get(ParamPageNumber) == "" {
		out.Set(ParamPageNumber, strconv.Itoa(s.pageNumber))
	}
	if out.Get(ParamPageSize) == "" {
		out.Set(ParamPageSize, strconv.Itoa(s.pageSize))
	}
	return out
}

func (s *CatalogueService) get(ctx context.Context, path string, query url.Values) (mo.Option[json.RawMessage], error) {
	doc, err := s.catalogue.Get(ctx, path, query)
	if err != nil {
		s.logger.ErrorContext(ctx, "catalogue lookup failed", "path", path, "error", err)
		return mo.None[json.RawMessage](), err
	}
	return doc, nil
}

// PackageFile materializes the archive a package was built from.
func (s *CatalogueService) PackageFile(ctx context.Context, packageUUID string) (mo.Option[model.MaterializedFile], error) {
	none := mo.None[model.MaterializedFile]()

	meta, err := s.packageMetadata(ctx, packageUUID)
	if err != nil || meta.IsAbsent() {
		return none, err
	}
	pd := meta.MustGet().PD
	if pd == nil || pd.PackageFileUUID == "" || pd.PackageFileName == "" {
		s.logger.WarnContext(ctx, "package not configured for download", "package_uuid", packageUUID)
		return none, nil
	}

	return s.materialize(ctx, "tgo-packages/"+url.PathEscape(pd.PackageFileUUID),
		pd.PackageFileName, model.PackageFileContentType)
}

// File materializes one of the files embedded in a package.
func (s *CatalogueService) File(ctx context.Context, packageUUID, fileUUID string) (mo.Option[model.MaterializedFile], error) {
	none := mo.None[model.MaterializedFile]()

	meta, err := s.packageMetadata(ctx, packageUUID)
	if err != nil || meta.IsAbsent() {
		return none, err
	}
	entry, ok := meta.MustGet().PD.FindContent(fileUUID)
	if !ok {
		s.logger.WarnContext(ctx, "file not found in package",
			"package_uuid", packageUUID, "file_uuid", fileUUID)
		return none, nil
	}
	name := entry.FileName()
	if name == "" {
		s.logger.WarnContext(ctx, "package file entry has no source",
			"package_uuid", packageUUID, "file_uuid", fileUUID)
		return none, nil
	}

	return s.materialize(ctx, "files/"+url.PathEscape(entry.UUID), name, entry.MediaType())
}

// Open returns a reader over a file produced by PackageFile or File.
func (s *CatalogueService) Open(ctx context.Context, file model.MaterializedFile) (io.ReadCloser, error) {
	return s.materializer.Open(ctx, file)
}

func (s *CatalogueService) packageMetadata(ctx context.Context, packageUUID string) (mo.Option[model.PackageMetadata], error) {
	none := mo.None[model.PackageMetadata]()

	doc, err := s.get(ctx, "packages/"+url.PathEscape(packageUUID), nil)
	if err != nil || doc.IsAbsent() {
		return none, err
	}
	raw := doc.MustGet()

	var meta model.PackageMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		s.logger.WarnContext(ctx, "unexpected package document", "package_uuid", packageUUID, "error", err)
		return none, nil
	}
	meta.Raw = raw
	return mo.Some(meta), nil
}

func (s *CatalogueService) materialize(ctx context.Context, path, fileName, contentType string) (mo.Option[model.MaterializedFile], error) {
	source, err := s.catalogue.ResolveURL(path)
	if err != nil {
		s.logger.ErrorContext(ctx, "catalogue not configured", "error", err)
		return mo.None[model.MaterializedFile](), err
	}
	file, err := s.materializer.Materialize(ctx, MaterializeRequest{
		SourceURL:   source,
		FileName:    fileName,
		ContentType: contentType,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "materialization failed", "source", source, "error", err)
		return mo.None[model.MaterializedFile](), err
	}
	return mo.Some(file), nil
}
