// Package render produces the HTML panel document.
//
// A render combines three inputs with different lifetimes:
//
//   - the stylesheet, read once from embedded assets (Assets)
//   - structural blocks such as the settings menu, memoized by their inputs
//     (Blocks)
//   - project rows, built on every render from the registry snapshot
//
// Rendering never invalidates anything. Repeated renders between two
// mutations read the settings backend at most once, through the snapshot.
package render
