package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/beacon-audit/beacon/internal/models"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func runAudit(t *testing.T, a Auditor, artifacts *models.Artifacts) (*models.Product, *models.Result) {
	t.Helper()
	product, err := a.Audit(context.Background(), artifacts)
	require.NoError(t, err)
	res, err := GenerateResult(a.Meta(), product)
	require.NoError(t, err)
	return product, res
}

func TestDefaults_UniqueNamesAndGroups(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range Defaults() {
		meta := a.Meta()
		require.False(t, seen[meta.Name], "duplicate audit %s", meta.Name)
		seen[meta.Name] = true

		_, err := models.ParseGroup(string(meta.Group))
		require.NoError(t, err, meta.Name)
	}
	require.Len(t, seen, 12)
}

func TestDefaults_ResultsSurviveJSON(t *testing.T) {
	artifacts := &models.Artifacts{
		URL:      "http://example.com/",
		FinalURL: "https://example.com/",
		Metrics: &models.Metrics{
			FirstMeaningfulPaint: float(4000),
			Interactive:          float(10000),
			SpeedIndex:           float(5500),
		},
		NetworkRecords: []models.NetworkRecord{
			{URL: "https://example.com/", Protocol: "h2", MimeType: "text/html", StatusCode: 200, TransferSize: 18000},
			{URL: "https://example.com/app.js", Protocol: "http/1.1", ResourceType: "Script", StatusCode: 200, TransferSize: 120000, CacheTTLSeconds: 600},
			{URL: "http://insecure.example.com/a.js", Protocol: "http/1.1", MimeType: "application/javascript", StatusCode: 200, TransferSize: 4000},
		},
		TagsBlockingFirstPaint: []models.BlockingTag{
			{URL: "https://example.com/a.css", TagName: "LINK", TransferSize: 2048, StartTime: 100, EndTime: 1100},
		},
		DOMStats: &models.DOMStats{TotalNodes: 3000, Depth: 12, MaxWidth: 40},
		ConsoleMessages: []models.ConsoleEntry{
			{Level: "error", Source: "network", Text: "Failed to load resource", URL: "https://example.com/x.js"},
		},
		DocumentWriteCalls: []models.CallSite{{URL: "https://example.com/ads.js", Line: 12, Col: 4}},
	}

	for _, a := range Defaults() {
		t.Run(a.Meta().Name, func(t *testing.T) {
			_, res := runAudit(t, a, artifacts)

			data, err := json.Marshal(res)
			require.NoError(t, err)

			var decoded models.Result
			require.NoError(t, json.Unmarshal(data, &decoded))
			require.Equal(t, res, &decoded)
		})
	}
}

func TestAudits_MissingArtifacts(t *testing.T) {
	for _, a := range Defaults() {
		if len(a.Meta().RequiredArtifacts) == 0 {
			continue
		}
		t.Run(a.Meta().Name, func(t *testing.T) {
			_, err := a.Audit(context.Background(), &models.Artifacts{})
			require.ErrorIs(t, err, ErrMissingArtifact)
		})
	}
}

func TestMetricAudits(t *testing.T) {
	artifacts := &models.Artifacts{Metrics: &models.Metrics{
		FirstMeaningfulPaint: float(4000),
		Interactive:          float(10000),
	}}

	product, res := runAudit(t, NewFirstMeaningfulPaint(), artifacts)
	require.Equal(t, 0.5, res.Score)
	require.Equal(t, "4,000 ms", res.DisplayValue)
	require.Equal(t, models.ScoreDisplayNumeric, res.ScoreDisplayMode)
	require.Equal(t, map[string]any{"timing": 4000.0}, product.ExtendedInfo["value"])

	_, res = runAudit(t, NewInteractive(), artifacts)
	require.Equal(t, 0.5, res.Score)

	_, err := NewSpeedIndex().Audit(context.Background(), artifacts)
	require.ErrorContains(t, err, "Perceptual Speed Index was not observed")
}

func TestLinkBlockingFirstPaint(t *testing.T) {
	artifacts := &models.Artifacts{TagsBlockingFirstPaint: []models.BlockingTag{
		{URL: "https://example.com/a.css", TagName: "LINK", TransferSize: 2048, StartTime: 100, EndTime: 1100},
		{URL: "https://example.com/b.css", TagName: "LINK", TransferSize: 10240, StartTime: 150, EndTime: 3323.4},
		{URL: "https://example.com/app.js", TagName: "SCRIPT", TransferSize: 4096, StartTime: 0, EndTime: 5000},
	}}

	product, res := runAudit(t, NewLinkBlockingFirstPaint(), artifacts)
	raw, _ := product.RawValue.NumberValue()
	require.Equal(t, 3223.0, raw)
	require.Equal(t, 0.0, res.Score)
	require.Equal(t, "2 resources delayed first paint by 3,223 ms", res.DisplayValue)
	require.Equal(t, models.GroupPerfHint, NewLinkBlockingFirstPaint().Meta().Group)

	wasted, ok := res.Details.ImpactEstimate()
	require.True(t, ok)
	require.Equal(t, 3223.0, wasted)
	require.Equal(t, []map[string]any{
		{"url": "https://example.com/a.css", "totalKb": 2.0, "totalMs": 1000.0},
		{"url": "https://example.com/b.css", "totalKb": 10.0, "totalMs": 3223.0},
	}, res.Details.Items)
}

func TestLinkBlockingFirstPaint_NoLinks(t *testing.T) {
	_, res := runAudit(t, NewLinkBlockingFirstPaint(), &models.Artifacts{TagsBlockingFirstPaint: []models.BlockingTag{}})
	require.Equal(t, 1.0, res.Score)
	require.Equal(t, "", res.DisplayValue)
	require.Empty(t, res.Details.Items)

	wasted, ok := res.Details.ImpactEstimate()
	require.True(t, ok)
	require.Equal(t, 0.0, wasted)
}

func TestUsesLongCacheTTL(t *testing.T) {
	artifacts := &models.Artifacts{NetworkRecords: []models.NetworkRecord{
		{URL: "https://example.com/app.js", ResourceType: "Script", StatusCode: 200, TransferSize: 102400},
		{URL: "https://example.com/cached.js", ResourceType: "Script", StatusCode: 200, TransferSize: 102400, FromCache: true},
		{URL: "https://example.com/logo.png", MimeType: "image/png", StatusCode: 200, TransferSize: 50000, CacheTTLSeconds: 31 * 24 * 60 * 60},
		{URL: "https://example.com/", ResourceType: "Document", MimeType: "text/html", StatusCode: 200, TransferSize: 90000},
		{URL: "https://example.com/missing.css", ResourceType: "Stylesheet", StatusCode: 404, TransferSize: 300},
	}}

	_, res := runAudit(t, NewUsesLongCacheTTL(), artifacts)
	require.Equal(t, 0.65, res.Score)
	require.Equal(t, "1 asset found", res.DisplayValue)
	require.Len(t, res.Details.Items, 1)
	require.Equal(t, "https://example.com/app.js", res.Details.Items[0]["url"])
	require.Equal(t, 488.0, *res.Details.Summary.WastedMs)
	require.Equal(t, 100.0, *res.Details.Summary.WastedKb)
}

func TestTotalByteWeight(t *testing.T) {
	artifacts := &models.Artifacts{NetworkRecords: []models.NetworkRecord{
		{URL: "https://example.com/small.js", TransferSize: 1024000},
		{URL: "https://example.com/big.js", TransferSize: 2048000},
		{URL: "https://example.com/mid.css", TransferSize: 1024000},
	}}

	_, res := runAudit(t, NewTotalByteWeight(), artifacts)
	require.Equal(t, 0.5, res.Score)
	require.Equal(t, "Total size was 4,000 KB", res.DisplayValue)
	require.Equal(t, "https://example.com/big.js", res.Details.Items[0]["url"])
	require.Equal(t, "https://example.com/small.js", res.Details.Items[1]["url"])
}

func TestTotalByteWeight_CapsTable(t *testing.T) {
	var records []models.NetworkRecord
	for i := range 12 {
		records = append(records, models.NetworkRecord{URL: fmt.Sprintf("https://example.com/%d.js", i), TransferSize: float64(1000 + i)})
	}

	_, res := runAudit(t, NewTotalByteWeight(), &models.Artifacts{NetworkRecords: records})
	require.Len(t, res.Details.Items, maxByteWeightRows)
	require.Equal(t, "https://example.com/11.js", res.Details.Items[0]["url"])
	require.Equal(t, 1.0, res.Score)
}

func TestDOMSize(t *testing.T) {
	_, res := runAudit(t, NewDOMSize(), &models.Artifacts{DOMStats: &models.DOMStats{TotalNodes: 3000, Depth: 12, MaxWidth: 40}})
	require.Equal(t, 0.5, res.Score)
	require.Equal(t, "3,000 nodes", res.DisplayValue)
	require.Equal(t, "3,000", res.Details.Items[0]["value"])
	require.Equal(t, "12", res.Details.Items[1]["value"])
}

func TestIsOnHTTPS(t *testing.T) {
	artifacts := &models.Artifacts{NetworkRecords: []models.NetworkRecord{
		{URL: "https://example.com/"},
		{URL: "http://insecure.example.com/a.js"},
		{URL: "http://insecure.example.com/a.js"},
		{URL: "http://localhost:8080/dev.js"},
		{URL: "data:image/png;base64,AAAA"},
	}}

	_, res := runAudit(t, NewIsOnHTTPS(), artifacts)
	require.Equal(t, 0.0, res.Score)
	require.Equal(t, models.ScoreDisplayBinary, res.ScoreDisplayMode)
	require.Equal(t, "1 insecure request found", res.DisplayValue)
	require.Equal(t, "Does not use HTTPS", res.Description)
	require.Equal(t, []map[string]any{{"url": "http://insecure.example.com/a.js"}}, res.Details.Items)

	_, res = runAudit(t, NewIsOnHTTPS(), &models.Artifacts{NetworkRecords: []models.NetworkRecord{{URL: "https://example.com/"}}})
	require.Equal(t, 1.0, res.Score)
	require.Equal(t, "Uses HTTPS", res.Description)
}

func TestUsesHTTP2(t *testing.T) {
	artifacts := &models.Artifacts{
		URL:      "http://example.com/",
		FinalURL: "https://example.com/",
		NetworkRecords: []models.NetworkRecord{
			{URL: "https://example.com/", Protocol: "h2"},
			{URL: "https://example.com/app.js", Protocol: "http/1.1"},
			{URL: "https://cdn.example.net/lib.js", Protocol: "http/1.1"},
		},
	}

	_, res := runAudit(t, NewUsesHTTP2(), artifacts)
	require.Equal(t, 0.0, res.Score)
	require.Equal(t, []map[string]any{{"url": "https://example.com/app.js", "protocol": "http/1.1"}}, res.Details.Items)
}

func TestErrorsInConsole(t *testing.T) {
	artifacts := &models.Artifacts{ConsoleMessages: []models.ConsoleEntry{
		{Level: "error", Source: "network", Text: "Failed to load resource", URL: "https://example.com/x.js"},
		{Level: "warning", Text: "deprecated API"},
		{Level: "error", Source: "javascript", Text: "Uncaught TypeError"},
	}}

	product, res := runAudit(t, NewErrorsInConsole(), artifacts)
	count, _ := product.RawValue.NumberValue()
	require.Equal(t, 2.0, count)
	require.Equal(t, 0.0, res.Score)
	require.Equal(t, "2 errors", res.DisplayValue)

	_, res = runAudit(t, NewErrorsInConsole(), &models.Artifacts{ConsoleMessages: []models.ConsoleEntry{}})
	require.Equal(t, 1.0, res.Score)
	require.Equal(t, "", res.DisplayValue)
}

func TestNoDocumentWrite(t *testing.T) {
	artifacts := &models.Artifacts{DocumentWriteCalls: []models.CallSite{{URL: "https://example.com/ads.js", Line: 12, Col: 4}}}

	_, res := runAudit(t, NewNoDocumentWrite(), artifacts)
	require.Equal(t, 0.0, res.Score)
	require.Equal(t, "1 call found", res.DisplayValue)
	require.Equal(t, "line: 12", res.Details.Items[0]["label"])
}

func TestPWACrossBrowser(t *testing.T) {
	a := NewPWACrossBrowser()
	_, res := runAudit(t, a, nil)
	require.True(t, res.Manual)
	require.Equal(t, 0.0, res.Score)
	require.Equal(t, models.GroupManualPWA, a.Meta().Group)
}

func TestSelect(t *testing.T) {
	names := func(auditors []Auditor) []string {
		var out []string
		for _, a := range auditors {
			out = append(out, a.Meta().Name)
		}
		return out
	}

	all, err := Select(Defaults(), nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 12)

	only, err := Select(Defaults(), []string{"dom-size", "interactive"}, []string{"dom-size"})
	require.NoError(t, err)
	require.Equal(t, []string{"interactive"}, names(only))

	skipped, err := Select(Defaults(), nil, []string{"pwa-cross-browser"})
	require.NoError(t, err)
	require.NotContains(t, names(skipped), "pwa-cross-browser")

	_, err = Select(Defaults(), []string{"nope"}, []string{"also-nope"})
	require.ErrorIs(t, err, ErrUnknownAudit)
	require.ErrorContains(t, err, `"nope"`)
	require.ErrorContains(t, err, `"also-nope"`)
}

func TestConfigure(t *testing.T) {
	auditors := Defaults()
	err := Configure(auditors, map[string]map[string]any{
		"dom-size": {"median": 1000.0, "diminishing_returns": 800.0},
	})
	require.NoError(t, err)

	var dom Auditor
	for _, a := range auditors {
		if a.Meta().Name == "dom-size" {
			dom = a
		}
	}
	_, res := runAudit(t, dom, &models.Artifacts{DOMStats: &models.DOMStats{TotalNodes: 1000}})
	require.Equal(t, 0.5, res.Score)
}

func TestConfigure_Errors(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]map[string]any
		errIs   error
		errText string
	}{
		{name: "unknown audit", options: map[string]map[string]any{"nope": {"median": 1.0}}, errIs: ErrUnknownAudit},
		{name: "not configurable", options: map[string]map[string]any{"is-on-https": {"median": 1.0}}, errText: "does not accept options"},
		{name: "diminishing returns above median", options: map[string]map[string]any{"dom-size": {"median": 100.0, "diminishing_returns": 200.0}}, errText: "configuring dom-size"},
		{name: "wrong type", options: map[string]map[string]any{"interactive": {"median": "fast"}}, errText: "decoding scoring options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Configure(Defaults(), tt.options)
			require.Error(t, err)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			}
			if tt.errText != "" {
				require.ErrorContains(t, err, tt.errText)
			}
		})
	}

	require.NoError(t, Configure(Defaults(), map[string]map[string]any{"is-on-https": {}}))
}
