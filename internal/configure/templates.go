package configure

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Templates use [[ ]] delimiters because the generated TSX is full of
// literal braces.

var pageTemplate = template.Must(template.New("page").Delims("[[", "]]").Parse(`'use client';

export default function [[.Component]]Page() {
  return (
    <div className="space-y-6">
      <div className="flex justify-between items-center">
        <h2 className="text-2xl font-bold text-gray-900 dark:text-white">
          [[.Name]]
        </h2>
      </div>

      <div className="bg-white dark:bg-gray-800 rounded-lg shadow p-6">
        <p className="text-gray-600 dark:text-gray-400">
          [[.Name]] page content goes here.
        </p>
      </div>
    </div>
  );
}
`))

func renderPage(page Page) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, map[string]string{
		"Component": strings.ReplaceAll(page.Name, " ", ""),
		"Name":      page.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("render page %s: %w", page.Path, err)
	}
	return buf.Bytes(), nil
}

var layoutTemplate = template.Must(template.New("layout").Delims("[[", "]]").Parse(`'use client';

import { useEffect, useState } from 'react';
import { useRouter, usePathname } from 'next/navigation';
import Link from 'next/link';
import { getAccessToken, isTokenExpired, clearTokens, decodeToken, refreshAccessToken } from '@/lib/auth';
import type { TokenPayload } from '@/types';
[[if .AIDisclosure]]import { AIDisclosureBanner } from '@/components/AIDisclosureBanner';
[[end]]
const navigation = [
[[range .Pages]]  { name: '[[.Name]]', href: '/[[.Path]]' },
[[end]]];

export default function DashboardLayout({
  children,
}: {
  children: React.ReactNode;
}) {
  const router = useRouter();
  const pathname = usePathname();
  const [user, setUser] = useState<TokenPayload | null>(null);
  const [loading, setLoading] = useState(true);

  useEffect(() => {
    const checkAuth = async () => {
      const token = getAccessToken();

      if (!token) {
        router.push('/login');
        return;
      }

      if (isTokenExpired(token)) {
        const refreshed = await refreshAccessToken();
        if (!refreshed) {
          router.push('/login');
          return;
        }
        const newToken = getAccessToken();
        if (newToken) {
          setUser(decodeToken(newToken));
        }
      } else {
        setUser(decodeToken(token));
      }

      setLoading(false);
    };

    checkAuth();
  }, [router]);

  const handleLogout = () => {
    clearTokens();
    router.push('/login');
  };

  if (loading) {
    return (
      <div className="flex min-h-screen items-center justify-center">
        <p className="text-gray-500">Loading...</p>
      </div>
    );
  }

  return (
    <div className="min-h-screen bg-gray-50 dark:bg-gray-900">
      <header className="bg-white dark:bg-gray-800 shadow">
        <div className="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8">
          <div className="flex justify-between items-center py-4">
            <div className="flex items-center space-x-8">
              <h1 className="text-xl font-bold text-gray-900 dark:text-white">
                [[.ProjectName]]
              </h1>
              <nav className="hidden md:flex space-x-1">
                {navigation.map((item) => (
                  <Link
                    key={item.name}
                    href={item.href}
                    className={` + "`" + `px-3 py-2 text-sm font-medium rounded-md transition-colors ${
                      pathname === item.href || pathname.startsWith(item.href + '/')
                        ? 'text-[[.Color]]-600 bg-[[.Color]]-50 dark:text-[[.Color]]-400 dark:bg-[[.Color]]-900/20'
                        : 'text-gray-600 hover:text-gray-900 dark:text-gray-400 dark:hover:text-white hover:bg-gray-100 dark:hover:bg-gray-700'
                    }` + "`" + `}
                  >
                    {item.name}
                  </Link>
                ))}
              </nav>
            </div>
            <div className="flex items-center space-x-4">
              <span className="text-sm text-gray-600 dark:text-gray-400">
                {user?.email}
              </span>
              {user?.roles?.includes('admin') && (
                <span className="px-2 py-1 text-xs bg-[[.Color]]-100 text-[[.Color]]-800 dark:bg-[[.Color]]-900 dark:text-[[.Color]]-200 rounded">
                  Admin
                </span>
              )}
              <button
                onClick={handleLogout}
                className="text-sm text-gray-600 hover:text-gray-900 dark:text-gray-400 dark:hover:text-white"
              >
                Logout
              </button>
            </div>
          </div>
        </div>
      </header>

      <main className="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8 py-8">
        {children}
      </main>
[[if .AIDisclosure]]
      <AIDisclosureBanner />
[[end]]    </div>
  );
}
`))

func renderLayout(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	err := layoutTemplate.Execute(&buf, map[string]any{
		"ProjectName":  cfg.ProjectName,
		"Color":        cfg.PrimaryColor,
		"Pages":        cfg.Pages,
		"AIDisclosure": cfg.Features.AIDisclosure,
	})
	if err != nil {
		return nil, fmt.Errorf("render layout: %w", err)
	}
	return buf.Bytes(), nil
}

var readmeTemplate = template.Must(template.New("readme").Delims("[[", "]]").Parse(`# [[.ProjectName]]

[[.Description]]

## Stack

- **Backend**: Go
- **Frontend**: Next.js 14 (TypeScript)
- **Database**: PostgreSQL 15
- **Cache**: Redis 7
- **AWS Emulation**: LocalStack (S3, Secrets Manager)
- **Containerization**: Docker Compose

## Quick Start

` + "```bash" + `
# Start all services
docker compose up

# Or run in background
make up
` + "```" + `

### Default Credentials

` + "```" + `
Email: [[.Auth.DefaultEmail]]
Password: [[.Auth.DefaultPassword]]
` + "```" + `

## Available Pages

[[range .Pages]]- **[[.Name]]**: /[[.Path]]
[[end]]
## Configuration

This project was configured with:
- **Primary Color**: [[.PrimaryColor]]
- **Pages**: [[.PageNames]]

To reconfigure, edit ` + "`quickstart.config.json`" + ` and rerun the
configuration command.
`))

func renderReadme(cfg Config) ([]byte, error) {
	names := make([]string, 0, len(cfg.Pages))
	for _, page := range cfg.Pages {
		names = append(names, page.Name)
	}
	var buf bytes.Buffer
	err := readmeTemplate.Execute(&buf, map[string]any{
		"ProjectName":  cfg.ProjectName,
		"Description":  cfg.Description,
		"PrimaryColor": cfg.PrimaryColor,
		"Pages":        cfg.Pages,
		"PageNames":    strings.Join(names, ", "),
		"Auth":         cfg.Auth,
	})
	if err != nil {
		return nil, fmt.Errorf("render readme: %w", err)
	}
	return buf.Bytes(), nil
}
