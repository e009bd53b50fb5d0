package model

// CrimeTypeCount группа распределения по типу преступления.
type CrimeTypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// StatusCount группа распределения по статусу дела.
type StatusCount struct {
	Status CaseStatus `json:"status"`
	Count  int        `json:"count"`
}

// Statistics сводка для дашборда.
type Statistics struct {
	TotalCriminals         int              `json:"totalCriminals"`
	ActiveFirs             int              `json:"activeFirs"`
	SolvedCases            int              `json:"solvedCases"`
	PendingCases           int              `json:"pendingCases"`
	CrimeTypeDistribution  []CrimeTypeCount `json:"crimeTypeDistribution"`
	CaseStatusDistribution []StatusCount    `json:"caseStatusDistribution"`
}
