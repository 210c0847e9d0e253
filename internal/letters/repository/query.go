package repository

import "fmt"

// paginate appends LIMIT/OFFSET clauses with the next positional parameters
func paginate(used int, args *[]interface{}, limit, offset int) string {
	clause := ""
	if limit > 0 {
		*args = append(*args, limit)
		used++
		clause += fmt.Sprintf(" LIMIT $%d", used)
	}
	if offset > 0 {
		*args = append(*args, offset)
		used++
		clause += fmt.Sprintf(" OFFSET $%d", used)
	}
	return clause
}
