package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/versatil/versatil-backend/internal/platform/ctxutil"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

type DocumentConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
}

func (c DocumentConfig) Enabled() bool {
	return strings.TrimSpace(c.ProjectID) != "" && strings.TrimSpace(c.ProcessorID) != ""
}

// Document extracts text from binary documents with a Document AI processor.
type Document interface {
	ProcessBytes(ctx context.Context, mimeType string, data []byte) (*DocAIResult, error)
	ExtractText(ctx context.Context, mimeType string, data []byte) (string, error)
	Close() error
}

type DocAIResult struct {
	Processor   string `json:"processor"`
	MimeType    string `json:"mime_type"`
	PrimaryText string `json:"primary_text"`
	Pages       int    `json:"pages"`
}

type documentService struct {
	log       *logger.Logger
	docClient *documentai.DocumentProcessorClient
	processor string
}

func NewDocument(log *logger.Logger, cfg DocumentConfig) (Document, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("document ai: project and processor id required")
	}
	slog := log.With("service", "gcp.Document")

	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "us"
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)

	docOpts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)
	c, err := documentai.NewDocumentProcessorClient(context.Background(), docOpts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	name := processorName(cfg.ProjectID, location, cfg.ProcessorID, cfg.ProcessorVersion)
	slog.Info("Document AI initialized", "endpoint", endpoint, "processor", name)

	return &documentService{log: slog, docClient: c, processor: name}, nil
}

func (s *documentService) Close() error {
	if s == nil || s.docClient == nil {
		return nil
	}
	return s.docClient.Close()
}

func (s *documentService) ProcessBytes(ctx context.Context, mimeType string, data []byte) (*DocAIResult, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if mimeType == "" {
		mimeType = "application/pdf"
	}
	if len(data) == 0 {
		return &DocAIResult{Processor: s.processor, MimeType: mimeType}, nil
	}

	resp, err := s.docClient.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: s.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	return buildDocAIResult(resp.GetDocument(), s.processor, mimeType), nil
}

func (s *documentService) ExtractText(ctx context.Context, mimeType string, data []byte) (string, error) {
	res, err := s.ProcessBytes(ctx, mimeType, data)
	if err != nil {
		return "", err
	}
	return res.PrimaryText, nil
}

func buildDocAIResult(doc *documentaipb.Document, processor, mimeType string) *DocAIResult {
	out := &DocAIResult{Processor: processor, MimeType: mimeType}
	if doc == nil {
		return out
	}
	out.Pages = len(doc.GetPages())

	// Keep paragraph breaks, collapse whitespace inside lines.
	lines := strings.Split(doc.GetText(), "\n")
	kept := make([]string, 0, len(lines))
	for _, ln := range lines {
		if t := collapseWhitespace(ln); t != "" {
			kept = append(kept, t)
		}
	}
	out.PrimaryText = strings.Join(kept, "\n")
	return out
}

func processorName(project, location, processorID, version string) string {
	project = strings.TrimSpace(project)
	location = strings.TrimSpace(location)
	processorID = strings.TrimSpace(processorID)
	version = strings.TrimSpace(version)

	if project == "" || location == "" || processorID == "" {
		return ""
	}
	base := fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processorID)
	if version != "" {
		return base + "/processorVersions/" + version
	}
	return base
}
