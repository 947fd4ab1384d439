// Package domain models weather-augmented image datasets: the auxiliary data
// published for each dataset, the on-disk layout it unpacks into, and the
// pixel math that turns a clean image into a foggy or rainy one.
//
// # Auxiliary Data
//
// For every (dataset, sequence, data kind) triple the remote archive publishes
// one zip file named
//
//	weather_<dataset>_<sequence slug>_<kind>.zip
//
// where the slug is the sequence with "/" replaced by "_", e.g.
// "weather_cityscapes_leftImg8bit_train_fog_transmittance.zip". A plain-text
// manifest, "weather_<dataset>_checksums.txt", lists one "<sha256 hex> <file>"
// pair per line.
//
// Data kinds:
//
//	depth              depth maps, downloaded but not composited
//	fog_transmittance  8-bit transmittance maps, one folder per fog level
//	rain_diff          differential rain layers + rain masks (Cityscapes)
//	rain               ready-made rainy images + rain masks (KITTI)
//
// # On-disk Layout
//
// Archives unpack below <output>/weather_datasets:
//
//	weather_<dataset>/<sequence>/<kind>/<level>/<sub path>/<file>.png
//
// The <sub path>/<file> tail mirrors the original dataset tree below
// <original root>/<sequence>. Levels are fog visibility settings (e.g. "30m")
// or rain intensities in mm/hr (e.g. "25mm"). Generated fog lands in a sibling
// "fog" tree with the same level/sub path structure; generated rain lands in
// "rain/<level>/rainy_image" next to a copied "rain/<level>/rain_mask".
//
// # Fog Model
//
// Koschmieder's atmospheric scattering model:
//
//	foggy = clean * T + A * (1 - T)
//
// T is the stored 8-bit transmittance divided by 255 and A is the constant
// airlight [Atmosphere]. The result is clamped to [0, 255] and truncated.
//
// # Rain Model
//
// Rain layers are encoded relative to 255 so that a pixel value of 255 means
// "no change":
//
//	rainy = (diff - 255) + clean
//
// evaluated in signed 32-bit arithmetic and clamped to [0, 255].
package domain
