package assessment

const problemStatement = "# Build a User Authentication Feature\n" +
	"\n" +
	"## Overview\n" +
	"Implement a user authentication system that allows users to sign up, log in, and manage their sessions.\n" +
	"\n" +
	"## Requirements\n" +
	"\n" +
	"### 1. Sign Up Flow\n" +
	"- Create a registration form with email and password fields\n" +
	"- Validate email format and password strength (min 8 characters)\n" +
	"- Store user credentials securely\n" +
	"- Show appropriate error messages for validation failures\n" +
	"\n" +
	"### 2. Login Flow\n" +
	"- Create a login form with email and password fields\n" +
	"- Authenticate users against stored credentials\n" +
	"- Create a session token upon successful login\n" +
	"- Handle incorrect credentials gracefully\n" +
	"\n" +
	"### 3. Session Management\n" +
	"- Implement session persistence using JWT tokens\n" +
	"- Add middleware to protect authenticated routes\n" +
	"- Provide a logout functionality that clears the session\n" +
	"\n" +
	"## Technical Constraints\n" +
	"- Use the existing API endpoints in `/src/api/auth`\n" +
	"- Follow the authentication patterns in the repo docs\n" +
	"- Ensure all forms are accessible (ARIA labels, keyboard navigation)\n" +
	"- Write unit tests for authentication logic\n" +
	"\n" +
	"## Evaluation Criteria\n" +
	"- Code quality and organization\n" +
	"- Proper error handling\n" +
	"- Security best practices\n" +
	"- Test coverage\n" +
	"- User experience considerations\n"

var repoDocs = []Doc{
	{
		ID:      "auth",
		Title:   "Authentication API",
		Content: "# Authentication API\n\n## Overview\nThe authentication system uses JWT tokens...",
	},
	{
		ID:      "database",
		Title:   "Database Schema",
		Content: "# Database Schema\n\n## Users Table\n- id: UUID\n- email: string\n- password_hash: string",
	},
	{
		ID:      "api",
		Title:   "API Reference",
		Content: "# API Reference\n\n## Endpoints\n\n### POST /api/auth/signup\nCreate a new user account",
	},
}

var starterFiles = map[string]string{
	"src/api/auth.ts": `export async function signup(email: string, password: string) {
  // TODO: Implement signup logic
  return { success: false, error: 'Not implemented' }
}

export async function login(email: string, password: string) {
  // TODO: Implement login logic
  return { success: false, error: 'Not implemented' }
}`,
	"src/components/auth-form.tsx": `export default function AuthForm() {
  return (
    <div>
      {/* TODO: Build authentication form */}
    </div>
  )
}`,
	"src/pages/login.tsx": `export default function LoginPage() {
  return <div>Login Page</div>
}`,
}
