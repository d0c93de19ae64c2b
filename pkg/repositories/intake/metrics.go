package intake

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"report-intake-gateway/pkg/models/private"
)

type metricsMiddleware struct {
	reqCount    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
	repo        Repository
}

func (m *metricsMiddleware) IsBlacklisted(ctx context.Context, ip string) (ok bool, err error) {
	defer func(s time.Time) {
		labels := []string{
			"IsBlacklisted", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.IsBlacklisted(ctx, ip)
}

func (m *metricsMiddleware) AddToBlacklist(ctx context.Context, ip string) (err error) {
	defer func(s time.Time) {
		labels := []string{
			"AddToBlacklist", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.AddToBlacklist(ctx, ip)
}

func (m *metricsMiddleware) RemoveFromBlacklist(ctx context.Context, ip string) (err error) {
	defer func(s time.Time) {
		labels := []string{
			"RemoveFromBlacklist", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.RemoveFromBlacklist(ctx, ip)
}

func (m *metricsMiddleware) ListBlacklist(ctx context.Context) (list []string, err error) {
	defer func(s time.Time) {
		labels := []string{
			"ListBlacklist", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.ListBlacklist(ctx)
}

func (m *metricsMiddleware) GetSubmission(ctx context.Context, id string) (record *private.SubmissionRecord, err error) {
	defer func(s time.Time) {
		labels := []string{
			"GetSubmission", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.GetSubmission(ctx, id)
}

func (m *metricsMiddleware) SetSubmission(ctx context.Context, id string, record private.SubmissionRecord) (err error) {
	defer func(s time.Time) {
		labels := []string{
			"SetSubmission", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.SetSubmission(ctx, id, record)
}

func (m *metricsMiddleware) PurgeSubmissions(ctx context.Context, cutoff time.Time) (removed int, err error) {
	defer func(s time.Time) {
		labels := []string{
			"PurgeSubmissions", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.PurgeSubmissions(ctx, cutoff)
}

func (m *metricsMiddleware) StageReport(ctx context.Context, id string, report private.StagedReport) (err error) {
	defer func(s time.Time) {
		labels := []string{
			"StageReport", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.StageReport(ctx, id, report)
}

func (m *metricsMiddleware) GetStagedReport(ctx context.Context, id string) (report *private.StagedReport, err error) {
	defer func(s time.Time) {
		labels := []string{
			"GetStagedReport", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.GetStagedReport(ctx, id)
}

func (m *metricsMiddleware) ClearStagedReport(ctx context.Context, id string) (err error) {
	defer func(s time.Time) {
		labels := []string{
			"ClearStagedReport", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.ClearStagedReport(ctx, id)
}

func (m *metricsMiddleware) PurgeStagedReports(ctx context.Context, cutoff time.Time) (removed int, err error) {
	defer func(s time.Time) {
		labels := []string{
			"PurgeStagedReports", strconv.FormatBool(err != nil),
		}
		m.reqCount.WithLabelValues(labels...).Add(1)
		m.reqDuration.WithLabelValues(labels...).Observe(time.Since(s).Seconds())
	}(time.Now())
	return m.repo.PurgeStagedReports(ctx, cutoff)
}

func NewMetrics(reqCount *prometheus.CounterVec, reqDuration *prometheus.HistogramVec, repo Repository) Repository {
	return &metricsMiddleware{
		reqCount:    reqCount,
		reqDuration: reqDuration,
		repo:        repo,
	}
}
