package aggregate

import (
	"sort"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

const DATE_LAYOUT = "2006-01-02"

// Timeline buckets the primary labels of timestamped records by UTC day,
// oldest day first.
func Timeline(records []models.AnnotatedRecord, primary []models.SentimentLabel) models.SentimentTimeline {
	timeline := models.SentimentTimeline{Days: []models.DailySentiment{}}
	byDate := make(map[string]*models.DailySentiment)

	for i, r := range records {
		if r.Timestamp == nil {
			timeline.Undated++
			continue
		}
		date := r.Timestamp.UTC().Format(DATE_LAYOUT)
		day, ok := byDate[date]
		if !ok {
			day = &models.DailySentiment{Date: date}
			byDate[date] = day
		}
		switch primary[i] {
		case models.Positive:
			day.Positive++
		case models.Negative:
			day.Negative++
		case models.Neutral:
			day.Neutral++
		}
		day.Total++
	}

	for _, day := range byDate {
		timeline.Days = append(timeline.Days, *day)
	}
	sort.Slice(timeline.Days, func(i, j int) bool {
		return timeline.Days[i].Date < timeline.Days[j].Date
	})
	return timeline
}
