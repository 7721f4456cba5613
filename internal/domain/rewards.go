package domain

// Milestone is a collectible unlocked after a number of completed donations.
type Milestone struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Donations   int    `json:"donations"`
}

var Badges = []Milestone{
	{Name: "First Timer", Description: "Made first donation", Donations: 1},
	{Name: "Philanthropic 5", Description: "Donated 5 times", Donations: 5},
	{Name: "Consistency", Description: "Donated 10 times", Donations: 10},
	{Name: "Changemaker", Description: "Donated 20 times", Donations: 20},
}

var Characters = []Milestone{
	{Name: "Fiona the Fish", Description: "Leads other fish to food in the reefs", Donations: 1},
	{Name: "Gerald the Squid", Description: "Loves jazz and a clean ocean home", Donations: 3},
	{Name: "Oswald the Whale", Description: "Makes tea for all his fish friends", Donations: 5},
	{Name: "Shelly the Shark", Description: "Makes flower crowns for her sea buddies", Donations: 10},
	{Name: "Terrence the Turtle", Description: "Always willing to give his friends a ride", Donations: 15},
	{Name: "Travis the Croc", Description: "Stands up for his friends", Donations: 20},
}

type Rewards struct {
	Badges     []Milestone `json:"badges"`
	Characters []Milestone `json:"characters"`
	// Next is the closest locked milestone across both lists, nil when
	// everything is unlocked.
	Next          *Milestone `json:"next,omitempty"`
	DonationsToGo int        `json:"donations_to_go"`
}

// RewardsFor derives unlocked badges and characters from the number of
// completed donations.
func RewardsFor(donations int) Rewards {
	r := Rewards{Badges: []Milestone{}, Characters: []Milestone{}}
	consider := func(list []Milestone, unlocked *[]Milestone) {
		for i := range list {
			m := list[i]
			if donations >= m.Donations {
				*unlocked = append(*unlocked, m)
				continue
			}
			if r.Next == nil || m.Donations < r.Next.Donations {
				r.Next = &m
			}
		}
	}
	consider(Badges, &r.Badges)
	consider(Characters, &r.Characters)
	if r.Next != nil {
		r.DonationsToGo = r.Next.Donations - donations
	}
	return r
}
