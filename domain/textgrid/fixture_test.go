package textgrid

import (
	"fmt"
	"strings"
)

// fixtureTier describes one tier of a generated TextGrid. Each record holds
// the raw right-hand sides of xmin, xmax and text (or number and mark for
// TextTier, where the second value is ignored).
type fixtureTier struct {
	class   string
	name    string
	records [][3]string
}

func intervalTier(name string, records ...[3]string) fixtureTier {
	return fixtureTier{class: "IntervalTier", name: name, records: records}
}

func pointTier(name string, records ...[3]string) fixtureTier {
	return fixtureTier{class: "TextTier", name: name, records: records}
}

func rec(start, end, label string) [3]string {
	return [3]string{start, end, `"` + label + `"`}
}

func writeTextGrid(tiers ...fixtureTier) string {
	var b strings.Builder
	b.WriteString("File type = \"ooTextFile\"\n")
	b.WriteString("Object class = \"TextGrid\"\n\n")
	b.WriteString("xmin = 0 \nxmax = 10 \ntiers? <exists> \n")
	fmt.Fprintf(&b, "size = %d \n", len(tiers))
	b.WriteString("item []: \n")
	for i, t := range tiers {
		fmt.Fprintf(&b, "    item [%d]:\n", i+1)
		fmt.Fprintf(&b, "        class = \"%s\" \n", t.class)
		fmt.Fprintf(&b, "        name = \"%s\" \n", t.name)
		b.WriteString("        xmin = 0 \n        xmax = 10 \n")
		if t.class == "TextTier" {
			fmt.Fprintf(&b, "        points: size = %d \n", len(t.records))
			for j, r := range t.records {
				fmt.Fprintf(&b, "        points [%d]:\n", j+1)
				fmt.Fprintf(&b, "            number = %s \n", r[0])
				fmt.Fprintf(&b, "            mark = %s \n", r[2])
			}
			continue
		}
		fmt.Fprintf(&b, "        intervals: size = %d \n", len(t.records))
		for j, r := range t.records {
			fmt.Fprintf(&b, "        intervals [%d]:\n", j+1)
			fmt.Fprintf(&b, "            xmin = %s \n", r[0])
			fmt.Fprintf(&b, "            xmax = %s \n", r[1])
			fmt.Fprintf(&b, "            text = %s \n", r[2])
		}
	}
	return b.String()
}

// sampleTextGrid has "words" (1 interval), "phones" (3 intervals) and a
// point tier "events" (2 marks).
func sampleTextGrid() string {
	return writeTextGrid(
		intervalTier("words", rec("0", "1.5", "hello")),
		intervalTier("phones",
			rec("0", "0.5", "h"),
			rec("0.5", "1.0", "e"),
			rec("1.0", "1.5", "lo"),
		),
		pointTier("events",
			rec("0.25", "", "click"),
			rec("1.1", "", "breath"),
		),
	)
}
