package main

var teamNames = map[int]string{
	1:  "Arsenal",
	2:  "Aston Villa",
	3:  "Brentford",
	4:  "Brighton & Hove Albion",
	5:  "Burnley",
	6:  "Chelsea",
	7:  "Crystal Palace",
	8:  "Everton",
	9:  "Leeds United",
	10: "Leicester City",
	11: "Liverpool",
	12: "Man City",
	13: "Man Utd",
	14: "Newcastle",
	15: "Norwich City",
	16: "Southampton",
	17: "Tottenham",
	18: "Watford",
	19: "West Ham Utd",
	20: "Wolves",
}

// TeamName returns the display name of a club id, or "Unknown".
func TeamName(id int) string {
	if name, ok := teamNames[id]; ok {
		return name
	}
	return "Unknown"
}
