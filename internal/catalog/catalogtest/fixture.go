package catalogtest

import "time"

const (
	SpiderMan     = 1009610
	IronMan       = 1009368
	Deadpool      = 1009268
	Hulk          = 1009351
	Wolverine     = 1009718
	Venom         = 1011000
	AgentVenom    = 1009663
	ScorpionVenom = 1010788
	Carnage       = 1009227
)

const (
	ComicASM300            = 1
	ComicSpiderManDeadpool = 2
	ComicAvengers          = 3
	ComicCivilWar          = 4
	ComicDeadpool          = 5
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.FixedZone("EST", -5*60*60))
}

// Fixture is a catalog in which Venom reaches Deadpool through Spider-Man, Spider-Man and Iron Man share two comics,
// and Hulk never shares a comic with Deadpool.
func Fixture() ([]Character, []Comic) {
	characters := []Character{
		{ID: SpiderMan, Name: "Spider-Man", Description: "Bitten by a radioactive spider, Peter Parker gained the proportionate strength of a spider."},
		{ID: IronMan, Name: "Iron Man", Description: "Wounded, captured and forced to build a weapon by his enemies, Tony Stark built armor instead."},
		{ID: Deadpool, Name: "Deadpool", Description: ""},
		{ID: Hulk, Name: "Hulk", Description: "Caught in a gamma bomb explosion."},
		{ID: Wolverine, Name: "Wolverine", Description: "Born with super-human senses and the power to heal."},
		{ID: AgentVenom, Name: "Venom (Flash Thompson)", Description: "Flash Thompson bonded with the symbiote as Agent Venom."},
		{ID: ScorpionVenom, Name: "Venom (Mac Gargan)", Description: "Mac Gargan, formerly the Scorpion, bonded with the symbiote."},
		{ID: Venom, Name: "Venom", Description: "Eddie Brock bonded with the alien symbiote and blamed Spider-Man for his ruin."},
		{ID: Carnage, Name: "Carnage (Cletus Kasady)", Description: "Cletus Kasady bonded with the spawn of the Venom symbiote."},
	}
	comics := []Comic{
		{ID: ComicASM300, Title: "Amazing Spider-Man (1963) #300", Issue: 300, OnSale: date(1988, time.May, 10), Cast: []int{SpiderMan, Venom}},
		{ID: ComicSpiderManDeadpool, Title: "Spider-Man/Deadpool (2016) #1", Issue: 1, OnSale: date(2016, time.January, 6), Cast: []int{SpiderMan, Deadpool}},
		{ID: ComicAvengers, Title: "Avengers (1998) #1", Issue: 1, OnSale: date(1998, time.February, 1), Cast: []int{IronMan, SpiderMan, Hulk}},
		{ID: ComicCivilWar, Title: "Civil War (2006) #1", Issue: 1, OnSale: date(2006, time.May, 3), Cast: []int{IronMan, SpiderMan, Wolverine}},
		{ID: ComicDeadpool, Title: "Deadpool (2008) #1", Issue: 1, OnSale: date(2008, time.July, 2), Cast: []int{Deadpool, Wolverine}},
	}
	return characters, comics
}
