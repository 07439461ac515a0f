package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/campaign-estimator/internal/demand"
	"github.com/ignite/campaign-estimator/internal/ingest"
	"github.com/ignite/campaign-estimator/internal/periods"
	"github.com/ignite/campaign-estimator/internal/tabular"
)

// HandleUpload ingests one campaign file: bytes -> grid -> reconciled
// table -> demand normalization. Structural failures (missing required
// columns) stop the pipeline here, before any filtering, and report
// exactly which canonical fields could not be resolved.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	data, filename, err := readUpload(w, r, h.config.Upload.MaxBytes())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	grid, err := ingest.Load(data)
	if err != nil {
		log.Printf("[api] upload %s: %v", filename, err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("could not read %s: %v", filename, err))
		return
	}

	table, err := tabular.Reconcile(grid)
	if err != nil {
		var missing *tabular.MissingFieldsError
		if errors.As(err, &missing) {
			log.Printf("[api] upload %s rejected: %v", filename, err)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":   missing.Error(),
				"missing": missing.Missing,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	diag := demand.NormalizeTable(table, h.config.Demand.Thresholds())
	ds := h.store.Put(filename, table, diag)
	log.Printf("[api] upload %s: id=%s rows=%d parsed=%d missing=%d suspicious=%d corrected=%d",
		filename, ds.ID, len(table.Rows), diag.Parsed, diag.Missing, diag.Suspicious, diag.Corrected)

	writeJSON(w, http.StatusCreated, datasetResponse(ds))
}

// HandleGetDataset returns the overview for an uploaded dataset.
func (h *Handlers) HandleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds := h.dataset(w, r)
	if ds == nil {
		return
	}
	writeJSON(w, http.StatusOK, datasetResponse(ds))
}

// HandleDeleteDataset discards an uploaded dataset.
func (h *Handlers) HandleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	ds := h.dataset(w, r)
	if ds == nil {
		return
	}
	h.store.Delete(ds.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleFilter previews the rows one period's criteria would select.
func (h *Handlers) HandleFilter(w http.ResponseWriter, r *http.Request) {
	ds := h.dataset(w, r)
	if ds == nil {
		return
	}
	var req criteriaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	crit, err := req.criteria(h.config.Periods.Mode())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	indices := periods.Matches(ds.Table, crit)
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(indices),
		"columns": ds.Table.Columns,
		"rows":    rowsJSON(ds.Table, indices),
	})
}

type estimateRequest struct {
	Earlier       criteriaRequest `json:"earlier"`
	Later         criteriaRequest `json:"later"`
	GrowthPercent float64         `json:"growth_percent"`
}

// HandleEstimate runs the full two-period estimation: each period's
// criteria select rows, an optional explicit selection narrows them (the
// caller's checkbox state as plain data), and the blended estimate is
// computed over the two subsets.
func (h *Handlers) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	ds := h.dataset(w, r)
	if ds == nil {
		return
	}
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	earlierIdx, laterIdx, err := h.selectPeriods(ds, req.Earlier, req.Later)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	earlier := ds.Table.Subset(earlierIdx)
	later := ds.Table.Subset(laterIdx)
	result := periods.Estimate(earlier, later, req.GrowthPercent)
	log.Printf("[api] estimate id=%s earlier=%d later=%d growth=%.1f basis=%s",
		ds.ID, len(earlier.Rows), len(later.Rows), req.GrowthPercent, result.Basis)

	writeJSON(w, http.StatusOK, map[string]any{
		"estimate": result,
		"earlier":  map[string]any{"count": len(earlierIdx), "rows": rowsJSON(ds.Table, earlierIdx)},
		"later":    map[string]any{"count": len(laterIdx), "rows": rowsJSON(ds.Table, laterIdx)},
	})
}

type exportRequest struct {
	Earlier criteriaRequest `json:"earlier"`
	Later   criteriaRequest `json:"later"`
}

// HandleExport streams the selected campaigns of both periods as a CSV
// attachment, combined and de-duplicated, in display column order.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	ds := h.dataset(w, r)
	if ds == nil {
		return
	}
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	earlierIdx, laterIdx, err := h.selectPeriods(ds, req.Earlier, req.Later)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	seen := make(map[int]bool)
	var combined []int
	for _, i := range append(earlierIdx, laterIdx...) {
		if !seen[i] {
			seen[i] = true
			combined = append(combined, i)
		}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="campaign_estimation_data.csv"`)
	cw := csv.NewWriter(w)
	cw.Write(ds.Table.Columns)
	for _, i := range combined {
		cw.Write(exportRow(ds.Table, ds.Table.Rows[i]))
	}
	cw.Flush()
}

// selectPeriods resolves both periods' criteria and selections against the
// dataset.
func (h *Handlers) selectPeriods(ds *Dataset, earlier, later criteriaRequest) ([]int, []int, error) {
	mode := h.config.Periods.Mode()
	earlierCrit, err := earlier.criteria(mode)
	if err != nil {
		return nil, nil, fmt.Errorf("earlier period: %w", err)
	}
	laterCrit, err := later.criteria(mode)
	if err != nil {
		return nil, nil, fmt.Errorf("later period: %w", err)
	}
	earlierIdx := applySelection(periods.Matches(ds.Table, earlierCrit), earlier.Selected)
	laterIdx := applySelection(periods.Matches(ds.Table, laterCrit), later.Selected)
	return earlierIdx, laterIdx, nil
}

// applySelection narrows matched indices to an explicit selection. A nil
// selection means "everything matched" (the default checkbox state); an
// empty one means nothing.
func applySelection(matched []int, selected []int) []int {
	if selected == nil {
		return matched
	}
	want := make(map[int]bool, len(selected))
	for _, i := range selected {
		want[i] = true
	}
	var out []int
	for _, i := range matched {
		if want[i] {
			out = append(out, i)
		}
	}
	return out
}

// criteriaRequest is the wire form of one period's filter parameters.
type criteriaRequest struct {
	Country  string `json:"country"`
	Category string `json:"category"`
	Search   string `json:"search"`
	From     string `json:"from"`
	To       string `json:"to"`
	Selected []int  `json:"selected"`
}

func (cr criteriaRequest) criteria(mode periods.MatchMode) (periods.Criteria, error) {
	if cr.Country == "" {
		return periods.Criteria{}, errors.New("country is required")
	}
	from, err := time.Parse("2006-01-02", cr.From)
	if err != nil {
		return periods.Criteria{}, fmt.Errorf("invalid from date %q (want YYYY-MM-DD)", cr.From)
	}
	to, err := time.Parse("2006-01-02", cr.To)
	if err != nil {
		return periods.Criteria{}, fmt.Errorf("invalid to date %q (want YYYY-MM-DD)", cr.To)
	}
	return periods.Criteria{
		Country:  cr.Country,
		Category: cr.Category,
		Search:   cr.Search,
		From:     from,
		To:       to,
		Mode:     mode,
	}, nil
}

// dataset resolves the {datasetID} URL parameter, writing a 404 when the
// id is unknown.
func (h *Handlers) dataset(w http.ResponseWriter, r *http.Request) *Dataset {
	id := chi.URLParam(r, "datasetID")
	ds := h.store.Get(id)
	if ds == nil {
		writeError(w, http.StatusNotFound, "unknown dataset id")
		return nil
	}
	return ds
}

// readUpload extracts the uploaded bytes from a multipart form (field
// "file") or a raw request body.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("missing multipart field %q: %w", "file", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", fmt.Errorf("read upload: %w", err)
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, "upload", nil
}

// datasetResponse is the overview payload: what the original tool showed
// in its sidebar, plus normalization diagnostics.
func datasetResponse(ds *Dataset) map[string]any {
	t := ds.Table

	countrySet := map[string]bool{}
	categorySet := map[string]bool{}
	var dateMin, dateMax time.Time
	for _, rec := range t.Rows {
		if rec.Country != "" {
			countrySet[rec.Country] = true
		}
		if rec.Category != "" {
			categorySet[rec.Category] = true
		}
		if ts, ok := periods.ParseDate(rec.DateStart); ok {
			if dateMin.IsZero() || ts.Before(dateMin) {
				dateMin = ts
			}
		}
		if ts, ok := periods.ParseDate(rec.DateEnd); ok {
			if ts.After(dateMax) {
				dateMax = ts
			}
		}
	}

	overview := map[string]any{
		"rows":       len(t.Rows),
		"columns":    t.Columns,
		"countries":  sortedKeys(countrySet),
		"categories": sortedKeys(categorySet),
	}
	if !dateMin.IsZero() {
		overview["date_start_min"] = dateMin.Format("2006-01-02")
	}
	if !dateMax.IsZero() {
		overview["date_end_max"] = dateMax.Format("2006-01-02")
	}

	return map[string]any{
		"id":          ds.ID,
		"filename":    ds.Filename,
		"uploaded_at": ds.UploadedAt.UTC().Format(time.RFC3339),
		"overview":    overview,
		"diagnostics": ds.Diagnostics,
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// rowJSON renders one record for the JSON API. The index is the row's
// position in the full dataset so selections can refer back to it.
func rowJSON(t *tabular.Table, i int) map[string]any {
	rec := t.Rows[i]
	row := map[string]any{
		"index":         i,
		"campaign_name": rec.CampaignName,
		"description":   rec.Description,
		"date_start":    rec.DateStart,
		"date_end":      rec.DateEnd,
		"country":       rec.Country,
		"category":      rec.Category,
	}
	if rec.Demand != nil {
		row["demand"] = *rec.Demand
	} else {
		row["demand"] = nil
	}
	if len(rec.Extra) > 0 {
		row["extra"] = rec.Extra
	}
	return row
}

func rowsJSON(t *tabular.Table, indices []int) []map[string]any {
	rows := make([]map[string]any, 0, len(indices))
	for _, i := range indices {
		rows = append(rows, rowJSON(t, i))
	}
	return rows
}

// exportRow renders one record's cells in the table's column order.
// Demand exports its normalized value, not the raw source text.
func exportRow(t *tabular.Table, rec *tabular.Record) []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		switch tabular.CanonicalField(col) {
		case tabular.FieldDemand:
			if rec.Demand != nil {
				out[i] = strconv.FormatFloat(*rec.Demand, 'f', -1, 64)
			}
		case tabular.FieldCampaignName, tabular.FieldDescription,
			tabular.FieldDateStart, tabular.FieldDateEnd,
			tabular.FieldCountry, tabular.FieldCategory:
			out[i] = rec.Field(tabular.CanonicalField(col))
		default:
			out[i] = rec.Extra[col]
		}
	}
	return out
}
