// Package overlay records what the overlay has done to the host
// configuration so it can be undone exactly.
//
// Two maps are kept per workspace:
//
//   - originals: the value each key had the first time the overlay managed
//     it, either Absent (the key did not exist) or Present(v). An entry is
//     written once and never replaced until DiscardAll; the first
//     observation is the only one guaranteed to be the user's.
//   - applied: the exact value the overlay last wrote for each key, used to
//     recognise its own writes after rules have changed.
//
// Together with the last applied target-key list they are persisted under
// three keys in the datastore:
//
//	ws/<workspace hash>/targets    ["titleBar.activeBackground", ...]
//	ws/<workspace hash>/originals  {"titleBar.activeBackground": {"missing": true}}
//	ws/<workspace hash>/applied    {"titleBar.activeBackground": "#FF0000"}
package overlay
