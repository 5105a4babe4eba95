package google

import (
	"context"
	"fmt"
	"time"
)

type demoFile struct {
	file    File
	content string
}

var demoModified = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

var demoFiles = []demoFile{
	{
		file: File{ID: "demo-doc-onboarding", Name: "Team Onboarding Guide", MimeType: MimeGoogleDoc, ModifiedTime: &demoModified},
		content: "Welcome to the team!\n\nThis guide walks you through your first week: " +
			"accounts, tools, and who to ask for help.",
	},
	{
		file:    File{ID: "demo-doc-roadmap", Name: "Product Roadmap Q1", MimeType: MimeGoogleDoc, ModifiedTime: &demoModified},
		content: "Q1 goals:\n1. Launch assistant templates\n2. Improve document search\n3. Ship the mobile beta",
	},
	{
		file:    File{ID: "demo-sheet-metrics", Name: "Support Metrics", MimeType: MimeGoogleSheet, ModifiedTime: &demoModified},
		content: "week,tickets,csat\n1,120,4.6\n2,98,4.7\n",
	},
}

// DemoSource serves a fixed set of sample documents for integrations created
// without Google credentials.
type DemoSource struct{}

func (DemoSource) ListFiles(ctx context.Context, pageToken string, pageSize int64) ([]File, string, error) {
	if pageToken != "" {
		return nil, "", nil
	}
	out := make([]File, 0, len(demoFiles))
	for _, f := range demoFiles {
		out = append(out, f.file)
	}
	return out, "", nil
}

func (DemoSource) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	for _, f := range demoFiles {
		if f.file.ID == fileID {
			return []byte(f.content), nil
		}
	}
	return nil, fmt.Errorf("demo file %s not found", fileID)
}

func (DemoSource) Download(ctx context.Context, fileID string) ([]byte, error) {
	return DemoSource{}.Export(ctx, fileID, "")
}
