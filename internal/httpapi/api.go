package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yuqie6/GradeMirror/internal/bootstrap"
	"github.com/yuqie6/GradeMirror/internal/dto"
	"github.com/yuqie6/GradeMirror/internal/schema"
	"github.com/yuqie6/GradeMirror/internal/service"
)

type apiServer struct {
	core      *bootstrap.Core
	startTime time.Time
}

func newAPI(core *bootstrap.Core) *apiServer {
	return &apiServer{
		core:      core,
		startTime: time.Now(),
	}
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"name":       a.core.Cfg.App.Name,
		"version":    a.core.Cfg.App.Version,
		"started_at": a.startTime.Format(time.RFC3339),
	})
}

// ========== routes ==========

func (a *apiServer) registerJSONRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/rankings", a.wrapGET(a.getRankings))
	mux.HandleFunc("/api/rankings/average", a.wrapGET(a.getAverage))

	mux.HandleFunc("/api/students/rank", a.wrapGET(a.getStudentRank))
	mux.HandleFunc("/api/students/indicators", a.wrapGET(a.getStudentIndicators))
	mux.HandleFunc("/api/students/indicators/history", a.wrapGET(a.getIndicatorHistory))
	mux.HandleFunc("/api/students/targets", a.wrapGET(a.getStudentTargets))
	mux.HandleFunc("/api/students/warnings", a.wrapGET(a.getStudentWarnings))
	mux.HandleFunc("/api/students/recalculate", a.wrapPOST(a.recalculateStudent))

	mux.HandleFunc("/api/snapshots", a.wrapAny(a.snapshots))
	mux.HandleFunc("/api/snapshots/compare", a.wrapGET(a.compareSnapshots))

	mux.HandleFunc("/api/requests", a.wrapAny(a.requests))
	mux.HandleFunc("/api/requests/approve", a.wrapPOST(a.approveRequest))
	mux.HandleFunc("/api/requests/reject", a.wrapPOST(a.rejectRequest))
}

func (a *apiServer) wrapGET(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapPOST(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapAny(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) { fn(w, r) }
}

// ========== handlers ==========

func (a *apiServer) getRankings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var (
		ranked []service.RankedStudent
		err    error
	)
	if s := strings.TrimSpace(r.URL.Query().Get("top")); s != "" {
		n, perr := strconv.Atoi(s)
		if perr != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "top 必须是正整数")
			return
		}
		ranked, err = a.core.Engines.Rankings.TopN(ctx, n)
	} else {
		ranked, err = a.core.Engines.Rankings.Rankings(ctx)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]dto.RankedStudentDTO, 0, len(ranked))
	for _, rs := range ranked {
		result = append(result, toRankedDTO(rs))
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) getAverage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	avg, err := a.core.Engines.Rankings.Average(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ClassAverageDTO{Average: avg})
}

func (a *apiServer) getStudentRank(w http.ResponseWriter, r *http.Request) {
	studentID, err := parseInt64Param(r.URL.Query().Get("student_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "student_id 不合法")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rank, err := a.core.Engines.Rankings.Rank(ctx, studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"student_id": studentID, "rank": rank})
}

func (a *apiServer) getStudentIndicators(w http.ResponseWriter, r *http.Request) {
	studentID, err := parseInt64Param(r.URL.Query().Get("student_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "student_id 不合法")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	latest, err := a.core.Engines.Repos.Indicators.GetLatestPerCategory(ctx, studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	categories := make([]string, 0, len(latest))
	for cat := range latest {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	indicators := make([]dto.IndicatorDTO, 0, len(categories))
	for _, cat := range categories {
		trend, err := a.core.Engines.Indicators.Trend(ctx, studentID, cat)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		indicators = append(indicators, dto.IndicatorDTO{
			Category:   cat,
			Cumulative: latest[cat],
			Trend:      trend,
		})
	}

	weak, err := a.core.Engines.Indicators.WeakCategories(ctx, studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StudentIndicatorsDTO{
		StudentID:      studentID,
		Indicators:     indicators,
		WeakCategories: weak,
	})
}

func (a *apiServer) getIndicatorHistory(w http.ResponseWriter, r *http.Request) {
	studentID, err := parseInt64Param(r.URL.Query().Get("student_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "student_id 不合法")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	records, err := a.core.Engines.Repos.Indicators.GetByStudent(ctx, studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]dto.IndicatorHistoryEntryDTO, 0, len(records))
	for _, rec := range records {
		result = append(result, dto.IndicatorHistoryEntryDTO{
			QuizID:         rec.QuizID,
			Category:       rec.Category,
			IndicatorValue: rec.IndicatorValue,
			Cumulative:     rec.Cumulative,
			ComputedAt:     rec.ComputedAt.UnixMilli(),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) getStudentTargets(w http.ResponseWriter, r *http.Request) {
	studentID, err := parseInt64Param(r.URL.Query().Get("student_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "student_id 不合法")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	targets, err := a.core.Engines.Repos.Targets.GetActiveByStudent(ctx, studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	guidance, err := a.core.Engines.Targets.Guidance(ctx, studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	streak, err := a.core.Engines.Repos.Streaks.Get(ctx, studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := dto.StudentTargetsDTO{
		StudentID: studentID,
		Targets:   make([]dto.TargetDTO, 0, len(targets)),
		Guidance:  guidance,
	}
	if streak != nil {
		result.CurrentStreak = streak.CurrentStreak
	}
	for _, t := range targets {
		d := dto.TargetDTO{
			ID:          t.ID,
			Category:    t.Category,
			TargetValue: t.TargetValue,
			Achieved:    t.Achieved,
		}
		if t.AchievedAt != nil {
			d.AchievedAt = t.AchievedAt.UnixMilli()
		}
		result.Targets = append(result.Targets, d)
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) getStudentWarnings(w http.ResponseWriter, r *http.Request) {
	studentID, err := parseInt64Param(r.URL.Query().Get("student_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "student_id 不合法")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	warnings, err := a.core.Engines.Warnings.ActiveWarnings(ctx, studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]dto.WarningDTO, 0, len(warnings))
	for _, wr := range warnings {
		result = append(result, dto.WarningDTO{
			ID:          wr.ID,
			WarningType: wr.WarningType,
			Reason:      wr.Reason,
			CreatedAt:   wr.CreatedAt.UnixMilli(),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) recalculateStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := parseInt64Param(r.URL.Query().Get("student_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "student_id 不合法")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	if err := a.core.Engines.Indicators.RecalculateAll(ctx, studentID); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.core.Engines.Points.Recalculate(ctx, studentID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"student_id": studentID, "recalculated": true})
}

func (a *apiServer) snapshots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createSnapshot(w, r)
	case http.MethodGet:
		a.listSnapshots(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *apiServer) listSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := strings.TrimSpace(r.URL.Query().Get("limit")); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	snaps, err := a.core.Engines.Repos.Snapshots.List(ctx, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]dto.SnapshotDTO, 0, len(snaps))
	for _, snap := range snaps {
		result = append(result, dto.SnapshotDTO{
			AsOfDate:   snap.AsOfDate,
			EntryCount: len(snap.Entries),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) createSnapshot(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "请求体不合法")
		return
	}
	date := strings.TrimSpace(body.Date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	snap, err := a.core.Engines.Rankings.CreateSnapshot(ctx, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if keep := a.core.Cfg.Grading.SnapshotKeepCount; keep > 0 {
		if err := a.core.Engines.Repos.Snapshots.Prune(ctx, keep); err != nil {
			slog.Warn("清理过期快照失败", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, dto.SnapshotDTO{
		AsOfDate:   snap.AsOfDate,
		EntryCount: len(snap.Entries),
	})
}

func (a *apiServer) compareSnapshots(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from/to 不能为空")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	deltas, err := a.core.Engines.Rankings.CompareSnapshots(ctx, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]dto.SnapshotCompareEntryDTO, 0, len(deltas))
	for id, delta := range deltas {
		result = append(result, dto.SnapshotCompareEntryDTO{StudentID: id, RankDelta: delta})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) requests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.submitRequest(w, r)
	case http.MethodGet:
		a.listRequests(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (a *apiServer) submitRequest(w http.ResponseWriter, r *http.Request) {
	var body dto.SubmitRequestDTO
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "请求体不合法")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	req, err := a.core.Requests.Submit(ctx, service.SubmitRequestInput{
		RequestType: body.RequestType,
		RequesterID: body.RequesterID,
		Payload:     schema.JSONMap(body.Payload),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

func (a *apiServer) listRequests(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status == "" {
		status = schema.RequestPending
	}
	limit := 100
	if s := strings.TrimSpace(r.URL.Query().Get("limit")); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reqs, err := a.core.Engines.Repos.Requests.ListByStatus(ctx, status, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]dto.UpdateRequestDTO, 0, len(reqs))
	for i := range reqs {
		result = append(result, toRequestDTO(&reqs[i]))
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *apiServer) approveRequest(w http.ResponseWriter, r *http.Request) {
	var body dto.ReviewRequestDTO
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "请求体不合法")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	if err := a.core.Requests.Approve(ctx, body.RequestID, body.ReviewerID, body.Notes); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request_id": body.RequestID, "status": schema.RequestApproved})
}

func (a *apiServer) rejectRequest(w http.ResponseWriter, r *http.Request) {
	var body dto.ReviewRequestDTO
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "请求体不合法")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := a.core.Requests.Reject(ctx, body.RequestID, body.ReviewerID, body.Notes); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"request_id": body.RequestID, "status": schema.RequestRejected})
}

// ========== mapping ==========

func toRankedDTO(rs service.RankedStudent) dto.RankedStudentDTO {
	return dto.RankedStudentDTO{
		StudentID:        rs.Student.ID,
		Name:             rs.Student.Name,
		Rank:             rs.Rank,
		TotalPoints:      rs.Entry.TotalPoints,
		QuizPoints:       rs.Entry.QuizPoints,
		AttendancePoints: rs.Entry.AttendancePoints,
		HomeworkPoints:   rs.Entry.HomeworkPoints,
		TargetPoints:     rs.Entry.TargetPoints,
	}
}

func toRequestDTO(req *schema.UpdateRequest) dto.UpdateRequestDTO {
	return dto.UpdateRequestDTO{
		ID:          req.ID,
		RequestType: req.RequestType,
		EntityKind:  req.EntityKind,
		EntityID:    req.EntityID,
		RequesterID: req.RequesterID,
		Status:      req.Status,
		ReviewerID:  req.ReviewerID,
		ReviewNotes: req.ReviewNotes,
		CreatedAt:   req.CreatedAt.UnixMilli(),
	}
}
