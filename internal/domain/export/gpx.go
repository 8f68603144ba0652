package export

import (
	"encoding/xml"
	"strings"
)

const gpxHeader = `<?xml version="1.0" encoding="UTF-8" standalone="no" ?>
<gpx xmlns="http://www.topografix.com/GPX/1/1"
  xmlns:gpxtpx="http://www.garmin.com/xmlschemas/TrackPointExtension/v1"
  creator="%s" version="1.1">
  <metadata>
    <time>%s</time>
  </metadata>
  <trk>
    <trkseg>
`

// No position is recorded, so every point sits at 0,0 and carries only time and heart rate.
const gpxTrackPoint = `      <trkpt lat="0" lon="0">
        <time>%s</time>
        <extensions>
          <gpxtpx:TrackPointExtension>
            <gpxtpx:hr>%d</gpxtpx:hr>
          </gpxtpx:TrackPointExtension>
        </extensions>
      </trkpt>
`

const gpxFooter = `    </trkseg>
  </trk>
</gpx>
`

func escapeXML(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
