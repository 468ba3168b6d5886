package service

// wordsPhones has "words" (2 intervals, the shortest tier) and "phones"
// (3 intervals). Segment ids: words 0-1, phones 2-4.
const wordsPhones = `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 3
tiers? <exists>
size = 2
item []:
    item [1]:
        class = "IntervalTier"
        name = "words"
        xmin = 0
        xmax = 3
        intervals: size = 2
        intervals [1]:
            xmin = 0
            xmax = 1.5
            text = "hello"
        intervals [2]:
            xmin = 1.5
            xmax = 3
            text = "world"
    item [2]:
        class = "IntervalTier"
        name = "phones"
        xmin = 0
        xmax = 3
        intervals: size = 3
        intervals [1]:
            xmin = 0
            xmax = 1
            text = "h"
        intervals [2]:
            xmin = 1
            xmax = 2
            text = "e"
        intervals [3]:
            xmin = 2
            xmax = 3
            text = "w"
`

func intPtr(i int) *int { return &i }
