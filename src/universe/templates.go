package universe

//DefaultTemplates are available in every universe
var DefaultTemplates = []Template{
	{
		"blinker",
		"period 2 oscillator",
		[][2]int{{0, 0}, {0, 1}, {0, 2}},
	},
	{
		"glider",
		"the smallest spaceship, moves diagonally",
		[][2]int{{0, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}},
	},
	{
		"block",
		"still life",
		[][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	},
	{
		"rpentomino",
		"methuselah, stabilizes after 1103 generations on an unbounded field",
		[][2]int{{0, 1}, {0, 2}, {1, 0}, {1, 1}, {2, 1}},
	},
	{
		"sample",
		"the test sample with 3 stable patterns",
		[][2]int{
			{1, 1}, {2, 1},
			{1, 2}, {2, 2},
			{3, 3},
			{2, 4},
			{3, 4},
			{3, 5},
		},
	},
}
