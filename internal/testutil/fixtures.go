package testutil

import "time"

// ArchiveJSON is an HPImageArchive response with three en-US images listed
// out of date order. The newest one carries the "Info" placeholder title.
const ArchiveJSON = `{"images":[
  {"startdate":"20250102","fullstartdate":"202501020800","enddate":"20250103",
   "url":"/th?id=OHR.Second_EN-US2_UHD.jpg","urlbase":"/th?id=OHR.Second_EN-US2",
   "copyright":"Granite cliffs (© B)","copyrightlink":"/search?q=b","title":"Second","quiz":"","wp":true,"hsh":"h2"},
  {"startdate":"20250103","fullstartdate":"202501030800","enddate":"20250104",
   "url":"/th?id=OHR.Third_EN-US3_UHD.jpg","urlbase":"/th?id=OHR.Third_EN-US3",
   "copyright":"Frozen lake (© C)","copyrightlink":"/search?q=c","title":"Info","quiz":"","wp":true,"hsh":"h3"},
  {"startdate":"20250101","fullstartdate":"202501010800","enddate":"20250102",
   "url":"/th?id=OHR.First_EN-US1_UHD.jpg","urlbase":"/th?id=OHR.First_EN-US1",
   "copyright":"Desert dunes (© A)","copyrightlink":"/search?q=a","title":"First","quiz":"","wp":true,"hsh":"h1"}
]}`

// EmptyArchiveJSON is an HPImageArchive response without images.
const EmptyArchiveJSON = `{"images":[]}`

// JPEGBytes starts like a JFIF file, enough for content sniffing.
var JPEGBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// ArchiveNow is a clock reading half a day after the newest ArchiveJSON image.
var ArchiveNow = time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)

// FixedClock returns a clock function that always reports now.
func FixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}
