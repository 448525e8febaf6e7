// Package statsview serves live runtime charts (heap, goroutines, GC) for
// profiling the emulation loop.
//
// After launch the charts are viewable at:
//
//	localhost:12600/debug/statsview
package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// DefaultAddress is used when Launch is given an empty address
const DefaultAddress = "localhost:12600"

const path = "/debug/statsview"

// Launch starts the stats server in a new goroutine and reports its URL
// on output
func Launch(output io.Writer, address string) string {
	if address == "" {
		address = DefaultAddress
	}

	go func() {
		viewer.SetConfiguration(viewer.WithAddr(address))
		mgr := statsview.New()
		mgr.Start()
	}()

	url := fmt.Sprintf("http://%s%s", address, path)
	fmt.Fprintf(output, "[APP] Stats server available at %s\n", url)
	return url
}
