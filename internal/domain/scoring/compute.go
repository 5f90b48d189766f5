package scoring

import (
	"math"
	"time"

	"elms/internal/domain/leave"
)

const (
	statusApproved = "approved"
	statusRejected = "rejected"
	statusPending  = "pending"

	timelyNoticeDays = 3
	day              = 24 * time.Hour
	year             = 365 * day
)

// Compute scores a user's leave record as of in.AsOf. It always fills the
// debug block; callers drop it when it was not asked for.
func Compute(in Input) Report {
	var d Debug
	d.TotalRequests = len(in.Requests)
	for _, r := range in.Requests {
		switch r.Status {
		case statusApproved:
			d.ApprovedRequests++
			d.UsedDays += r.DurationDays
		case statusRejected:
			d.RejectedRequests++
		case statusPending:
			d.PendingRequests++
		}
		if float64(r.StartDate.Sub(r.CreatedAt))/float64(day) >= timelyNoticeDays {
			d.TimelyCount++
		}
	}
	d.AllowedDays = in.BalanceTotal
	d.OverlappingPairs = overlappingPairs(in.Requests)

	discipline := float64(MaxDiscipline)
	if d.TotalRequests > 0 {
		discipline = float64(d.ApprovedRequests-d.RejectedRequests) / float64(d.TotalRequests) * MaxDiscipline
	}

	usage := float64(MaxUsage) / 2
	if d.AllowedDays > 0 {
		d.UsedRatio = float64(d.UsedDays) / float64(d.AllowedDays)
		usage = usageBand(d.UsedRatio)
	}

	d.TimelyRatio = 1
	if d.TotalRequests > 0 {
		d.TimelyRatio = float64(d.TimelyCount) / float64(d.TotalRequests)
	}
	timeliness := d.TimelyRatio * MaxTimeliness

	pending := math.Max(0, MaxPending-2*float64(d.PendingRequests))
	overlap := math.Max(0, MaxOverlap-2*float64(d.OverlappingPairs))

	d.YearsOfService = float64(in.AsOf.Sub(in.JoinedAt)) / float64(year)
	tenure := math.Min(d.YearsOfService*2, MaxTenure)

	total := discipline + usage + timeliness + pending + overlap + tenure

	d.UsedRatio = round(d.UsedRatio, 2)
	d.TimelyRatio = round(d.TimelyRatio, 2)
	d.YearsOfService = round(d.YearsOfService, 2)

	return Report{
		OverallScore: round(total, 1),
		Components: Components{
			Discipline: component(discipline, MaxDiscipline),
			Usage:      component(usage, MaxUsage),
			Timeliness: component(timeliness, MaxTimeliness),
			Pending:    component(pending, MaxPending),
			Overlap:    component(overlap, MaxOverlap),
			Tenure:     component(tenure, MaxTenure),
		},
		Debug:      &d,
		ComputedAt: in.AsOf,
	}
}

func usageBand(ratio float64) float64 {
	switch {
	case ratio <= 0.2:
		return 20
	case ratio <= 0.4:
		return 15
	case ratio <= 0.6:
		return 10
	case ratio <= 0.8:
		return 5
	default:
		return 0
	}
}

// overlappingPairs counts unordered pairs of non-rejected requests whose
// inclusive date ranges intersect.
func overlappingPairs(requests []RequestFact) int {
	pairs := 0
	for i := 0; i < len(requests); i++ {
		a := requests[i]
		if a.Status == statusRejected {
			continue
		}
		for j := i + 1; j < len(requests); j++ {
			b := requests[j]
			if b.Status == statusRejected {
				continue
			}
			if leave.Overlaps(a.StartDate, a.EndDate, b.StartDate, b.EndDate) {
				pairs++
			}
		}
	}
	return pairs
}

func component(score float64, outOf int) Component {
	return Component{
		Score:   round(score, 2),
		Max:     outOf,
		Percent: int(math.Round(score / float64(outOf) * 100)),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
