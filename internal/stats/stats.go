// Package stats считает сводку по текущему набору записей.
// Агрегаты не кешируются: каждый вызов проходит по всем записям.
package stats

import (
	"CaseKeeper/internal/model"
	"sort"
)

// Compute строит статистику по карточкам и количеству FIR.
func Compute(criminals []model.CriminalRecord, firCount int) model.Statistics {
	byType := make(map[string]int)
	byStatus := make(map[model.CaseStatus]int)
	for _, c := range criminals {
		byType[c.CrimeType]++
		byStatus[c.Status]++
	}

	st := model.Statistics{
		TotalCriminals:         len(criminals),
		ActiveFirs:             firCount,
		SolvedCases:            byStatus[model.CaseClosed],
		PendingCases:           byStatus[model.CasePending],
		CrimeTypeDistribution:  make([]model.CrimeTypeCount, 0, len(byType)),
		CaseStatusDistribution: make([]model.StatusCount, 0, len(byStatus)),
	}
	for k, n := range byType {
		st.CrimeTypeDistribution = append(st.CrimeTypeDistribution, model.CrimeTypeCount{Type: k, Count: n})
	}
	for k, n := range byStatus {
		st.CaseStatusDistribution = append(st.CaseStatusDistribution, model.StatusCount{Status: k, Count: n})
	}

	// по убыванию количества, при равенстве по ключу
	sort.Slice(st.CrimeTypeDistribution, func(i, j int) bool {
		a, b := st.CrimeTypeDistribution[i], st.CrimeTypeDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Type < b.Type
	})
	sort.Slice(st.CaseStatusDistribution, func(i, j int) bool {
		a, b := st.CaseStatusDistribution[i], st.CaseStatusDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Status < b.Status
	})
	return st
}
