// Package model reads GORM model metadata into the tables, columns and
// relations the schema generator works from.
//
// Models are ordinary GORM structs:
//
//	type User struct {
//	    gorm.Model
//	    Name  string `gorm:"not null;comment:Display name"`
//	    Posts []Post
//	}
//
//	func (User) GraphQLDoc() string { return "A registered user" }
//
//	reg := model.NewRegistry()
//	err := reg.Register(&User{}, &Post{})
package model
