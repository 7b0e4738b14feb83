package hunttest

import "github.com/cityhunt/cityhunt/internal/model"

// SeedSteps returns the fixed 13-step Milwaukee itinerary, including the QR
// values printed on the posters at each location.
func SeedSteps() []model.Step {
	return []model.Step{
		{ID: 1, Name: "Black Cat Alley", Clue: "Murals bloom where bricks once crumbled; find the alley the artists claimed.", QRValue: "BLACKCAT_ALLEY_001"},
		{ID: 2, Name: "Milwaukee Art Museum", Clue: "Wings that open with the morning sun guard a hall of masterpieces by the lake.", QRValue: "ART_MUSEUM_002"},
		{ID: 3, Name: "Discovery World", Clue: "Science meets the shoreline where a tall ship docks beside touch tanks.", QRValue: "DISCOVERY_WORLD_003"},
		{ID: 4, Name: "Milwaukee Public Market", Clue: "Under one roof, a dozen kitchens trade in spice, cheese and fresh catch.", QRValue: "PUBLIC_MARKET_004"},
		{ID: 5, Name: "Bronze Fonz", Clue: "Two thumbs up on the Riverwalk from a leather-jacketed legend.", QRValue: "BRONZE_FONZ_005"},
		{ID: 6, Name: "Milwaukee City Hall", Clue: "A clock tower of Flemish brick has watched the city since 1895.", QRValue: "CITY_HALL_006"},
		{ID: 7, Name: "Pabst Theater", Clue: "A baroque jewel built by a beer baron still raises its curtain nightly.", QRValue: "PABST_THEATER_007"},
		{ID: 8, Name: "Gas Light Building", Clue: "Read tomorrow's weather in the color of the flame atop this art deco tower.", QRValue: "GAS_LIGHT_008"},
		{ID: 9, Name: "Central Library", Clue: "Climb marble stairs beneath a dome where a million stories wait in silence.", QRValue: "CENTRAL_LIBRARY_009"},
		{ID: 10, Name: "Lakefront Brewery", Clue: "Across the river from the market, tanks of gold ferment beside a smiling sun.", QRValue: "LAKEFRONT_BREWERY_010"},
		{ID: 11, Name: "Mitchell Park Domes", Clue: "Three glass beehives hold a desert, a jungle and a garden under Wisconsin sky.", QRValue: "MITCHELL_DOMES_011"},
		{ID: 12, Name: "Harley-Davidson Museum", Clue: "A century of chrome and thunder rests on a campus built for two wheels.", QRValue: "HARLEY_MUSEUM_012"},
		{ID: 13, Name: "North Point Lighthouse", Clue: "Your journey ends where a beacon has guided sailors home since 1855.", QRValue: "NORTH_POINT_013"},
	}
}
