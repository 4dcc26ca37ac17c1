package sportscam

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/swdee/go-sportscam/detection"
)

// LoadLabels reads the class names the detector model was trained with from
// the given text file.  It should contain one label per line, the line
// number being the class id.
func LoadLabels(file string) ([]string, error) {

	// open the file
	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	// create a scanner to read the file.
	scanner := bufio.NewScanner(f)

	var labels []string

	// read and trim each line
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		labels = append(labels, line)
	}

	// check for errors during scanning
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return labels, nil
}

// applyLabels returns the detections with missing class names filled in from
// the label list.  The input slice is not modified
func applyLabels(dets []detection.Detection, labels []string) []detection.Detection {

	if len(labels) == 0 {
		return dets
	}

	out := make([]detection.Detection, len(dets))
	copy(out, dets)

	for i := range out {
		id := out[i].ClassID

		if out[i].ClassName == "" && id >= 0 && id < len(labels) {
			out[i].ClassName = labels[id]
		}
	}

	return out
}
