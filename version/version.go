package version

import (
	"fmt"
	"io"
)

// 构建时通过 -ldflags "-X" 注入
var (
	BuildTS   = "None"
	GitHash   = "None"
	GitBranch = "None"
	Version   = "None"
)

// 用于获取格式化后的版本号，附带7位提交哈希
func GetVersion() string {
	if GitHash != "" {
		h := GitHash
		if len(h) > 7 {
			h = h[:7]
		}
		return fmt.Sprintf("%s-%s", Version, h)
	}
	return Version
}

func Printer(w io.Writer) {
	fmt.Fprintln(w, "Version:          ", GetVersion())
	fmt.Fprintln(w, "Git Branch:       ", GitBranch)
	fmt.Fprintln(w, "Git Commit:       ", GitHash)
	fmt.Fprintln(w, "Build Time (UTC): ", BuildTS)
}
