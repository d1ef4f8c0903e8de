package domain

// CommonPasswords is the ordered trial list for automatic recovery attempts.
// The empty string comes first and stands for "no password"; the remainder is
// a curated list of passwords people actually protect documents with.
// Trial order is significant. Never mutate this slice.
var CommonPasswords = []string{
	"",
	"password",
	"123456",
	"12345678",
	"1234",
	"12345",
	"password123",
	"admin",
	"letmein",
	"welcome",
	"monkey",
	"dragon",
	"baseball",
	"abc123",
	"111111",
	"mustang",
	"access",
	"shadow",
	"master",
	"michael",
	"superman",
	"696969",
	"123123",
	"batman",
	"trustno1",
}
