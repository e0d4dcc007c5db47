package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultCSS is the stylesheet written on every build. Site owners never
// edit this file; their overrides go in user.css, which loads after it.
const defaultCSS = `/* default style */
:root{--maxw:760px;--pad:1rem}
*{box-sizing:border-box}
body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial,Apple Color Emoji,Segoe UI Emoji;line-height:1.75;margin:2rem auto;max-width:var(--maxw);padding:0 var(--pad)}
a{text-decoration:none}
header{margin-bottom:1.25rem}
h1{font-size:clamp(1.6rem,6vw,2.6rem);line-height:1.2;margin:0 0 .25rem}
.month-list a{display:block;padding:.35rem 0}
.post{padding:.9rem 0;border-bottom:1px solid #eee}
.post .meta{font-size:.95rem;opacity:.7}
.badge{font-size:.75rem;padding:.1rem .45rem;border:1px solid #ccc;border-radius:.5rem;margin-left:.5rem}
footer{margin:3rem 0 2rem;font-size:.9rem;opacity:.7}
button{font-size:.95rem;padding:.25rem .7rem;border:1px solid #ccc;border-radius:.5rem;background:#f9f9f9;cursor:pointer}
button:hover{background:#eee}
@media (max-width:480px){
  :root{--pad:.75rem}
  .post .meta{font-size:.9rem}
}
`

// userCSSPlaceholder seeds user.css the first time only
const userCSSPlaceholder = "/* put your overrides here. this file won't be overwritten. */\n"

// EnsureStylesheets writes style.css unconditionally and creates user.css if
// it does not exist. An existing user.css is never touched, whatever its
// content.
func EnsureStylesheets(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	stylePath := filepath.Join(dir, "style.css")
	if err := os.WriteFile(stylePath, []byte(defaultCSS), 0644); err != nil {
		return fmt.Errorf("failed to write style.css: %w", err)
	}

	userPath := filepath.Join(dir, "user.css")
	if _, err := os.Stat(userPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat user.css: %w", err)
	}

	if err := os.WriteFile(userPath, []byte(userCSSPlaceholder), 0644); err != nil {
		return fmt.Errorf("failed to write user.css: %w", err)
	}
	return nil
}
