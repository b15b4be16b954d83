package cratesio

import "time"

// crateResponse is the subset of the crates.io crate endpoint the client reads.
type crateResponse struct {
	Versions []versionResponse `json:"versions"`
}

// versionResponse is one entry of the versions list. created_at is the publish
// time; updated_at is ignored.
type versionResponse struct {
	Num       string    `json:"num"`
	CreatedAt time.Time `json:"created_at"`
	Yanked    bool      `json:"yanked"`
}
