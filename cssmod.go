// Package cssmod applies CSS modules scoping and utility class extraction to
// stylesheets.
//
// cssmod renames classes, keyframes and :root custom properties with a short
// per-file suffix so they cannot collide across files, and can decompose
// single-class rules into shared, atomic utility classes.
//
// # Transforming a stylesheet
//
// Transform a single file in memory:
//
//	result, err := cssmod.Transform(ctx, src, "button.module.css", cssmod.Options{
//		Modules: true,
//		Utility: &cssmod.UtilityOptions{Mode: cssmod.ModeReadable, Output: true},
//	}, nil)
//	fmt.Println(result.CSS)
//	fmt.Println(result.Modules.Classes) // "btn" -> "btn_x1Yz9aB2 color[_red]"
//
// # Building a directory
//
// Transform every matching file under a source directory and write a JSON
// manifest of all rename maps:
//
//	builder, err := cssmod.NewBuilder(cssmod.Config{
//		SourceDir: "web/styles",
//		OutputDir: "dist/styles",
//		Includes:  []string{"**/*.module.css"},
//		Options:   cssmod.Options{Modules: true},
//	}, logger)
//	result, err := builder.Build(ctx)
//
// A Watcher rebuilds changed files and rewrites the manifest until stopped.
//
// # CLI Tool
//
// cssmod also provides a CLI tool. Install with:
//
//	go install github.com/yacobolo/cssmod/cmd/cssmod@latest
package cssmod
