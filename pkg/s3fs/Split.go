// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package s3fs

// Split splits the key using "/".
// A leading "/" is returned as its own element and empty elements are dropped.
func Split(p string) []string {
	dirs := []string{}
	d := []byte{}
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			if len(d) > 0 {
				dirs = append(dirs, string(d))
			} else if i == 0 {
				dirs = append(dirs, "/")
			}
			d = []byte{}
			continue
		}
		d = append(d, p[i])
	}
	if len(d) > 0 {
		dirs = append(dirs, string(d))
	}
	return dirs
}
